// Package cmd implements the audiobits command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/faizan/audiobits/config"
	"github.com/faizan/audiobits/logger"
	"github.com/faizan/audiobits/registry"
	"github.com/faizan/audiobits/store"
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "audiobits",
		Short:         "Registry of artists and the songs they own",
		Long:          `audiobits registers principals as artists and records their songs by the content hash of the audio file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (YAML); AUDIOBITS_* environment variables override it")

	load := func(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return config.Config{}, nil, err
		}
		log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return config.Config{}, nil, err
		}
		return cfg, log, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newTokenCmd(load),
	)
	return root
}

type loadFunc func(cmd *cobra.Command) (config.Config, *slog.Logger, error)

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// openStore returns the configured registry store and a function that
// releases it.
func openStore(cfg config.DatabaseConfig, log *slog.Logger) (registry.Store, io.Closer, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory store; registrations are lost on exit")
		return registry.NewMemStore(), closerFunc(func() error { return nil }), nil
	}
	db, err := config.OpenDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	return store.New(db), sqlDB, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
