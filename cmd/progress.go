/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/spf13/cobra"
)

var progressDate string
var progressFrom string
var progressTo string

var progressCmd = &cobra.Command{
	Use:     "progress",
	Short:   "Show completion progress",
	Aliases: []string{"p"},
}

var showProgressCmd = &cobra.Command{
	Use:   "show",
	Short: "Show progress for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDateFlag("date", progressDate); err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		date := progressDate
		if date == "" {
			date = s.manager.Today()
		}

		p, ok := s.manager.GetProgress(cmd.Context(), date)
		if !ok {
			color.HiBlack("No progress recorded for %s yet.", date)
		}
		renderProgress(cmd.OutOrStdout(), []model.DailyProgress{p})
		return nil
	},
}

var listProgressCmd = &cobra.Command{
	Use:     "list",
	Short:   "List progress for every recorded day",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		all := s.manager.ListAllProgress(cmd.Context())
		sort.Slice(all, func(i, j int) bool { return all[i].Date < all[j].Date })
		renderProgress(cmd.OutOrStdout(), all)
		return nil
	},
}

var statsProgressCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise progress over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDateFlag("from", progressFrom); err != nil {
			return err
		}
		if err := checkDateFlag("to", progressTo); err != nil {
			return err
		}
		if progressFrom != "" && progressTo != "" && progressFrom > progressTo {
			return fmt.Errorf("--from %s is after --to %s", progressFrom, progressTo)
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		renderSummary(cmd.OutOrStdout(), s.manager.Stats(cmd.Context(), progressFrom, progressTo))
		return nil
	},
}

var recomputeProgressCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild the progress record of a day from its tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDateFlag("date", progressDate); err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		dates := []string{progressDate}
		if progressDate == "" {
			dates = s.manager.DatesWithTasks(cmd.Context())
		}

		days := []model.DailyProgress{}
		for _, date := range dates {
			days = append(days, s.manager.RecomputeProgress(cmd.Context(), date))
		}
		renderProgress(cmd.OutOrStdout(), days)
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Short:   "List the days that have tasks",
	Aliases: []string{"cal"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		days := []model.DailyProgress{}
		for _, date := range s.manager.DatesWithTasks(cmd.Context()) {
			p, _ := s.manager.GetProgress(cmd.Context(), date)
			days = append(days, p)
		}
		renderProgress(cmd.OutOrStdout(), days)
		return nil
	},
}

func init() {
	showProgressCmd.Flags().StringVarP(&progressDate, "date", "d", "", "date to show (default today)")
	recomputeProgressCmd.Flags().StringVarP(&progressDate, "date", "d", "", "date to rebuild (default every date with tasks)")
	statsProgressCmd.Flags().StringVar(&progressFrom, "from", "", "first date to include")
	statsProgressCmd.Flags().StringVar(&progressTo, "to", "", "last date to include")

	progressCmd.AddCommand(showProgressCmd, listProgressCmd, statsProgressCmd, recomputeProgressCmd)
	rootCmd.AddCommand(progressCmd, calendarCmd)
}
