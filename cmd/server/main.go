package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agrocaged/internal/app"
	"agrocaged/internal/config"
	"agrocaged/internal/infrastructure"
	"agrocaged/pkg/contracts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	configFile string
	output     string
	port       int
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve a published output set over a read-only HTTP API",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			logger.Info("starting server",
				slog.String("version", contracts.GetVersionString()),
				slog.Int("port", cfg.Server.Port),
				slog.String("output_dir", cfg.Pipeline.OutputDir))

			a, err := app.NewApplication(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			return a.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory to serve")
	flags.IntVarP(&opts.port, "port", "p", 0, "listen port")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or text")

	return cmd
}

// apply overlays the flags that were set and validates the result
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Pipeline.OutputDir = o.output
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	return cfg.Validate()
}
