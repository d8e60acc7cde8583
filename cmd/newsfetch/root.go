package main

import (
	"fmt"

	"github.com/pevans/newsfetch"
	"github.com/pevans/newsfetch/config"
	"github.com/pevans/newsfetch/logger"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	pipeline *newsfetch.Pipeline
}

type globalFlags struct {
	configFile string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:   "newsfetch",
		Short: "Extract articles from news sites and publish them as a versioned CSV",
		Long: `newsfetch fetches a fixed list of news pages, extracts article titles,
descriptions and links, normalizes the text, writes it to a CSV file, and
publishes the file with dvc and git.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "",
		"config file (default is ./"+config.DefaultConfigFile+" if present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"log level: debug, info, warn, error (overrides NEWSFETCH_LOG_LEVEL)")

	root.AddCommand(
		newRunCommand(a),
		newTaskCommand(a),
		newScheduleCommand(a),
		newServeCommand(a),
	)

	return root
}

func (a *app) init(flags *globalFlags) error {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.pipeline = newsfetch.New(cfg, log)
	return nil
}
