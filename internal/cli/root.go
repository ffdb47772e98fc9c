// Package cli implements the filecabinet command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/filecabinet/filecabinet/internal/config"
	"github.com/filecabinet/filecabinet/internal/engine"
	"github.com/filecabinet/filecabinet/internal/logging"
)

// RootOptions holds global flags.
type RootOptions struct {
	ConfigPath string
	Storage    string
	DataDir    string
	Validation string
	Verbose    bool
}

// NewRootCommand creates the root command for the filecabinet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "filecabinet",
		Short: "FileCabinet - person record store",
		Long: `FileCabinet stores person records in memory or in a fixed-width binary file,
finds them by field conditions, and exports or imports them as snapshots.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "filecabinet.yaml", "config file")
	cmd.PersistentFlags().StringVarP(&opts.Storage, "storage", "s", "", "storage backend: file, or memory (records last one command)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data", "", "data directory")
	cmd.PersistentFlags().StringVar(&opts.Validation, "validation-rules", "", "validation profile (default|custom)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewStatCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSnapshotsCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// runFunc is a command body that works on an open engine.
type runFunc func(cmd *cobra.Command, args []string, e *engine.Engine) error

// withEngine opens the engine described by the config and flags, runs fn and
// closes the engine again, whatever fn returns.
func (o *RootOptions) withEngine(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := o.config()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		e, err := engine.New(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := e.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("close: %w", cerr))
			}
		}()

		logger.Debug("command started", zap.String("command", cmd.CommandPath()))
		return fn(cmd, args, e)
	}
}

// config loads the config file and applies flag overrides.
func (o *RootOptions) config() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Storage != "" {
		cfg.Storage = o.Storage
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.Validation != "" {
		cfg.Validation.Profile = o.Validation
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
