/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/store"
	"github.com/spf13/cobra"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := configPathFlag
		if configFile == "" {
			path, err := store.GetConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			configFile = path
		}

		if _, err := os.Stat(configFile); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configFile)
		}

		if err := store.SaveConfigFile(configFile, model.DefaultConfig()); err != nil {
			return err
		}

		color.Green("✅ daytask initialized successfully!")
		fmt.Fprintln(cmd.OutOrStdout(), "📄 Config file created at:", configFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
