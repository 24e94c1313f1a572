package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/commands"
	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
	"github.com/flowscribe/flowscribe/pkg/config"
	"github.com/flowscribe/flowscribe/pkg/repository"
)

var (
	// Flags
	configFile string
	debug      bool
)

// NewRootCmd creates the flowscribe root command.
func NewRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "flowscribe",
		Short: "Author and validate automation workflow files",
		Long: `flowscribe reads, searches, edits, creates and validates the YAML
workflow files consumed by an execute_sequence automation engine.

Edits use exact-match semantics: the old text must occur exactly once
unless bulk replacement is requested, and an edit that would leave a
workflow structurally invalid is rejected before anything is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd)

			var cfg *config.Config
			var err error
			if configFile != "" {
				cfg, err = config.Load(ctx, configFile)
			} else {
				cfg, err = config.Discover(ctx, ".")
			}
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			// --debug beats the configured level
			if !debug {
				level, err := zerolog.ParseLevel(cfg.LogLevel)
				if err != nil {
					return errors.Errorf("parsing log level: %w", err)
				}
				zerolog.SetGlobalLevel(level)
			}

			rootOpts.Config = cfg
			rootOpts.Repository = repository.NewDefault()
			return nil
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(commands.NewReadCmd(rootOpts))
	cmd.AddCommand(commands.NewListCmd(rootOpts))
	cmd.AddCommand(commands.NewSearchCmd(rootOpts))
	cmd.AddCommand(commands.NewEditCmd(rootOpts))
	cmd.AddCommand(commands.NewCreateCmd(rootOpts))
	cmd.AddCommand(commands.NewValidateCmd(rootOpts))

	return cmd
}

// addRootFlags adds shared flags to the root command.
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: discover .flowscribe.* in cwd)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog, installs the logger on the command
// context, and returns that context.
func setupLogging(cmd *cobra.Command) context.Context {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)
	return ctx
}
