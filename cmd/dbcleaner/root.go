package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rflorenc/databricks-resource-cleaner/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	listen     string
	logLevel   string
}

func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "dbcleaner",
		Short: "Bulk-delete resources from a Databricks workspace",
		Long: `dbcleaner wipes catalogs, jobs, notebooks and serving endpoints from a
Databricks workspace, either from a browser form (serve) or the terminal (run).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.listen, "listen", "", "Listen address (default \":8080\")")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")

	rootCmd.AddCommand(NewServeCommand(flags))
	rootCmd.AddCommand(NewRunCommand(flags))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// load reads the config and applies the log level.
func (f *globalFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath, f.listen, f.logLevel)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbcleaner %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
