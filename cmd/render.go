/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/tracker"
)

const (
	barWidth = 20
	idWidth  = 8
)

func shortID(id string) string {
	if len(id) > idWidth {
		return id[:idWidth]
	}
	return id
}

func progressBar(percentage int) string {
	filled := min(max(percentage*barWidth/100, 0), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return percentageColor(percentage).Sprintf("%s %3d%%", bar, percentage)
}

func percentageColor(percentage int) text.Colors {
	switch {
	case percentage >= 100:
		return text.Colors{text.FgHiGreen}
	case percentage >= 50:
		return text.Colors{text.FgHiYellow}
	case percentage > 0:
		return text.Colors{text.FgHiRed}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false
	return t
}

func renderTasks(w io.Writer, tasks []model.Task) {
	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("ID"), text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Title")),
		text.FgGreen.Sprintf("Status"), text.FgGreen.Sprintf("Date"),
		text.FgGreen.Sprintf("Postponed"), text.FgGreen.Sprintf("Media"),
	})

	for _, task := range tasks {
		status := text.FgHiRed.Sprintf("Open")
		if task.IsCompleted {
			status = text.FgHiGreen.Sprintf("Done")
		}

		postponed := ""
		if task.PostponedCount > 0 {
			postponed = text.FgHiYellow.Sprintf("%d×", task.PostponedCount)
		}

		media := ""
		if task.Media != nil {
			media = fmt.Sprintf("%s: %s", task.Media.Type, task.Media.URL)
			if task.Media.Title != "" {
				media = fmt.Sprintf("%s (%s)", media, task.Media.Title)
			}
		}

		t.AppendRow(table.Row{shortID(task.ID), task.Title, status, task.Date, postponed, media})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", len(tasks))})
	t.Render()
}

func renderProgress(w io.Writer, days []model.DailyProgress) {
	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("Date"), text.FgGreen.Sprintf("Completed"),
		text.FgGreen.Sprintf("Total"), text.FgGreen.Sprintf("Progress"),
	})

	for _, p := range days {
		t.AppendRow(table.Row{p.Date, p.CompletedTasks, p.TotalTasks, progressBar(p.ProgressPercentage)})
	}
	t.Render()
}

func renderSummary(w io.Writer, s tracker.Summary) {
	renderProgress(w, s.Days)

	from, to := s.From, s.To
	if from == "" {
		from = "…"
	}
	if to == "" {
		to = "…"
	}

	t := newTable(w)
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Range", fmt.Sprintf("%s → %s", from, to)},
		{"Active days", s.ActiveDays},
		{"Perfect days", s.PerfectDays},
		{"Completed", fmt.Sprintf("%d / %d", s.CompletedTasks, s.TotalTasks)},
		{"Overall", progressBar(s.ProgressPercentage)},
	})
	t.Render()
}
