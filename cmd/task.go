/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/tracker"
	"github.com/nakachan-ing/daytask/internal/util"
	"github.com/spf13/cobra"
)

var taskURL string
var taskDate string
var taskAll bool
var taskSearchQuery string
var taskFrom string
var taskTo string

func checkDateFlag(name, value string) error {
	if value != "" && !tracker.ValidDate(value) {
		return fmt.Errorf("--%s must be a yyyy-mm-dd date, got %q", name, value)
	}
	return nil
}

func findTask(s *session, cmd *cobra.Command, id string) (model.Task, error) {
	task, ok := s.manager.FindTask(cmd.Context(), id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s not found (or prefix is ambiguous)", id)
	}
	return task, nil
}

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Manage the tasks of a day",
	Aliases: []string{"t"},
}

var newTaskCmd = &cobra.Command{
	Use:     "add [title]",
	Short:   "Add a new task for today",
	Args:    cobra.MinimumNArgs(1),
	Aliases: []string{"new", "n"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		task, err := s.manager.CreateTask(cmd.Context(), strings.Join(args, " "), model.DetectMedia(taskURL))
		if err != nil {
			return err
		}

		color.Green("✅ Task %s added for %s", shortID(task.ID), task.Date)
		return nil
	},
}

var listTaskCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks for a day",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		for name, value := range map[string]string{"date": taskDate, "from": taskFrom, "to": taskTo} {
			if err := checkDateFlag(name, value); err != nil {
				return err
			}
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		var tasks []model.Task
		if taskAll || taskFrom != "" || taskTo != "" {
			tasks = s.manager.ListAllTasks(cmd.Context())
		} else {
			date := taskDate
			if date == "" {
				date = s.manager.Today()
			}
			tasks = s.manager.ListTasksForDate(cmd.Context(), date)
		}
		tasks = util.FilterTasks(tasks, taskSearchQuery, taskFrom, taskTo)

		renderTasks(cmd.OutOrStdout(), tasks)
		return nil
	},
}

var doneTaskCmd = &cobra.Command{
	Use:     "done [id]",
	Short:   "Toggle a task between open and done",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		task, err := findTask(s, cmd, args[0])
		if err != nil {
			return err
		}

		task = s.manager.ToggleCompletion(cmd.Context(), task)
		p, _ := s.manager.GetProgress(cmd.Context(), task.Date)

		state := "reopened"
		if task.IsCompleted {
			state = "completed"
		}
		color.Green("✅ %q %s", task.Title, state)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", task.Date, progressBar(p.ProgressPercentage))
		return nil
	},
}

var postponeTaskCmd = &cobra.Command{
	Use:   "postpone [id]",
	Short: "Move a task to the next day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		task, err := findTask(s, cmd, args[0])
		if err != nil {
			return err
		}

		from := task.Date
		task = s.manager.PostponeTask(cmd.Context(), task)
		if task.Date == from {
			return fmt.Errorf("task %s could not be postponed", shortID(task.ID))
		}

		color.Yellow("⏭  %q moved %s → %s (postponed %d times)", task.Title, from, task.Date, task.PostponedCount)
		return nil
	},
}

var editTaskCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a task in your editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		task, err := findTask(s, cmd, args[0])
		if err != nil {
			return err
		}

		edited, err := editInEditor(task, util.EditorCommand(s.config.Editor))
		if err != nil {
			return err
		}
		if edited == task {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			return nil
		}

		if err := s.manager.UpdateTask(cmd.Context(), edited); err != nil {
			return err
		}
		color.Green("✅ Task %s updated", shortID(task.ID))
		return nil
	},
}

// taskFile is the part of a task the editor may change.
type taskFile struct {
	Title     string `yaml:"title"`
	Completed bool   `yaml:"completed"`
	Date      string `yaml:"date"`
	URL       string `yaml:"url"`
}

const editHelp = "Edit the front matter above. The id and postpone count are fixed;\nleave url empty to drop the attachment."

func editInEditor(task model.Task, editor string) (model.Task, error) {
	tmp, err := os.CreateTemp("", "daytask-*.md")
	if err != nil {
		return task, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	content, err := taskFileContent(task)
	if err != nil {
		tmp.Close()
		return task, err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return task, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return task, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := util.OpenEditor(tmp.Name(), editor); err != nil {
		return task, err
	}

	updated, err := os.ReadFile(tmp.Name())
	if err != nil {
		return task, fmt.Errorf("failed to read edited file: %w", err)
	}
	return applyTaskFile(task, string(updated))
}

func taskFileContent(task model.Task) (string, error) {
	return util.RenderFrontMatter(toTaskFile(task), editHelp)
}

func toTaskFile(task model.Task) taskFile {
	f := taskFile{Title: task.Title, Completed: task.IsCompleted, Date: task.Date}
	if task.Media != nil {
		f.URL = task.Media.URL
	}
	return f
}

func applyTaskFile(task model.Task, content string) (model.Task, error) {
	f, _, err := util.ParseFrontMatter[taskFile](content)
	if err != nil {
		return task, err
	}

	task.Title = strings.TrimSpace(f.Title)
	task.IsCompleted = f.Completed
	task.Date = strings.TrimSpace(f.Date)

	url := strings.TrimSpace(f.URL)
	switch {
	case url == "":
		task.Media = nil
	case task.Media == nil || task.Media.URL != url:
		task.Media = model.DetectMedia(url)
	}
	return task, nil
}

var deleteTaskCmd = &cobra.Command{
	Use:     "delete [id]",
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"rm"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		task, ok := s.manager.FindTask(cmd.Context(), args[0])
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s not found, nothing deleted.\n", args[0])
			return nil
		}

		s.manager.DeleteTask(cmd.Context(), task.ID)
		color.Green("🗑  Task %q deleted", task.Title)
		return nil
	},
}

func init() {
	newTaskCmd.Flags().StringVarP(&taskURL, "url", "u", "", "attach an image or link")

	listTaskCmd.Flags().StringVarP(&taskDate, "date", "d", "", "date to list (default today)")
	listTaskCmd.Flags().BoolVarP(&taskAll, "all", "a", false, "list tasks of every date")
	listTaskCmd.Flags().StringVarP(&taskSearchQuery, "search", "s", "", "filter by title")
	listTaskCmd.Flags().StringVar(&taskFrom, "from", "", "first date to include")
	listTaskCmd.Flags().StringVar(&taskTo, "to", "", "last date to include")

	taskCmd.AddCommand(newTaskCmd, listTaskCmd, doneTaskCmd, postponeTaskCmd, editTaskCmd, deleteTaskCmd)
	rootCmd.AddCommand(taskCmd)
}
