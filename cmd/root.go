/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nakachan-ing/daytask/internal/logger"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/store"
	"github.com/nakachan-ing/daytask/internal/tracker"
	"github.com/nakachan-ing/daytask/internal/util"
	"github.com/spf13/cobra"
)

// lockStaleAfter bounds how long an abandoned lock blocks other invocations.
const lockStaleAfter = time.Minute

var configPathFlag string

var rootCmd = &cobra.Command{
	Use:           "daytask",
	Short:         "Track daily tasks and completion progress",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file (default is $DAYTASK_CONFIG or the user config dir)")
}

func loadConfig() (*model.Config, error) {
	if configPathFlag != "" {
		return store.LoadConfigFile(configPathFlag)
	}
	return store.LoadConfig()
}

// session bundles what a command needs to talk to the core.
type session struct {
	config  *model.Config
	log     *logger.Logger
	manager *tracker.Manager
	closers []func() error
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warnw("cleanup failed", "error", err)
		}
	}
	s.log.Sync()
}

func openSession(ctx context.Context) (*session, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:    config.Log.Level,
		Format:   config.Log.Format,
		Output:   config.Log.Output,
		Filename: config.Log.Filename,
	})
	if err != nil {
		return nil, err
	}

	loc, err := tracker.LoadLocation(config.Timezone)
	if err != nil {
		return nil, err
	}

	s := &session{config: config, log: log}

	if config.Storage.Backend == "" || config.Storage.Backend == "file" {
		if err := os.MkdirAll(config.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		release, err := util.AcquireLock(filepath.Join(config.DataDir, ".lock"), lockStaleAfter)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, release)
	}

	st, closeStore, err := store.Open(ctx, *config, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, closeStore)

	s.manager = tracker.NewManager(st, log, tracker.WithLocation(loc))
	return s, nil
}
