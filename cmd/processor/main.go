package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"agrocaged/internal/classification"
	"agrocaged/internal/config"
	"agrocaged/internal/infrastructure"
	"agrocaged/internal/operations"
	"agrocaged/internal/publish"
	"agrocaged/pkg/contracts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the command line overrides. Only flags the user set are
// applied on top of the loaded configuration.
type options struct {
	configFile     string
	input          string
	output         string
	classification string
	formats        []string
	gzipCube       bool
	workers        int
	sample         bool
	publish        bool
	logLevel       string
	logFormat      string
	quiet          bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "processor",
		Short:         "Aggregate CAGED microdata into the agricultural employment tables",
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

			logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			slog.SetDefault(logger)
			defer infrastructure.CloseLogFile()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := run(ctx, cfg, logger)
			if err != nil {
				logger.ErrorContext(ctx, "pipeline run failed", slog.String("error", err.Error()))
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			if !opts.quiet {
				printSummary(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.input, "input", "i", "", "microdata file (.csv, .txt, .xlsx or .parquet)")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory")
	flags.StringVar(&opts.classification, "classification", "", "classification asset (defaults to the embedded one)")
	flags.StringSliceVar(&opts.formats, "formats", nil, "output formats: json, csv, xlsx")
	flags.BoolVar(&opts.gzipCube, "gzip-cube", false, "write the granular cube gzip-compressed")
	flags.IntVar(&opts.workers, "workers", 0, "enrichment workers (0 uses every CPU)")
	flags.BoolVar(&opts.sample, "sample", false, "mark the input as sample data instead of official microdata")
	flags.BoolVar(&opts.publish, "publish", false, "upload the output set to the configured bucket")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or text")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the run summary")

	return cmd
}

// apply overlays the flags that were set and validates the result
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Pipeline.InputPath = o.input
	}
	if flags.Changed("output") {
		cfg.Pipeline.OutputDir = o.output
	}
	if flags.Changed("classification") {
		cfg.Pipeline.ClassificationFile = o.classification
	}
	if flags.Changed("formats") {
		cfg.Pipeline.Formats = o.formats
	}
	if flags.Changed("gzip-cube") {
		cfg.Pipeline.GzipCube = o.gzipCube
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = o.workers
	}
	if flags.Changed("sample") {
		cfg.Pipeline.SourceIsOfficial = !o.sample
	}
	if flags.Changed("publish") {
		cfg.Publish.Enabled = o.publish
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}

	if cfg.Pipeline.InputPath == "" {
		return fmt.Errorf("an input file is required (--input or pipeline.input_path)")
	}
	return cfg.Validate()
}

// run wires the pipeline for cfg and executes one batch run
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*operations.RunResult, error) {
	providers, err := infrastructure.InitializeOTel(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	assets, err := classification.Load(cfg.Pipeline.ClassificationFile)
	if err != nil {
		return nil, err
	}

	deps := operations.Dependencies{
		Config: cfg.Pipeline,
		Assets: assets,
		Layout: config.NewLayout(cfg.Pipeline.OutputDir),
		Logger: logger,
	}
	if cfg.Publish.Enabled {
		publisher, err := publish.NewS3Publisher(ctx, cfg.Publish, logger)
		if err != nil {
			return nil, err
		}
		deps.Publisher = publisher
	}

	pipeline, err := operations.NewPipeline(deps, metrics)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger.InfoContext(ctx, "starting pipeline run",
		slog.String("run_id", runID),
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Pipeline.InputPath),
		slog.String("output_dir", cfg.Pipeline.OutputDir),
		slog.String("classification_version", assets.Table.Version()),
		slog.Bool("publish", deps.Publisher != nil))

	return pipeline.Run(ctx, runID)
}

// printSummary writes the run headline and the per-chain table
func printSummary(w io.Writer, result *operations.RunResult) {
	fmt.Fprintln(w, "Run:", result.RunID)
	fmt.Fprintln(w, "Output:", result.OutputDir)
	fmt.Fprintln(w, "Duration:", result.Duration.Round(time.Millisecond))
	if result.Dashboard == nil {
		return
	}

	meta := result.Dashboard.Metadata
	fmt.Fprintf(w, "Records: %d  Municipalities: %d  Chains: %d  Periods: %s to %s\n",
		meta.Records, meta.Municipalities, meta.Chains, meta.FirstPeriod, meta.LastPeriod)
	if !meta.SourceIsOfficial {
		fmt.Fprintln(w, "* sample data, not official microdata")
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{
		"Cadeia",
		"Admissões", "Desligamentos", "Saldo",
		"Salário\nmédio", "Admissões\n(%)",
	})

	for _, row := range result.Dashboard.ByChain {
		table.Append([]string{
			row.Chain,
			fmt.Sprintf("%d", row.Admissions),
			fmt.Sprintf("%d", row.Terminations),
			fmt.Sprintf("%+d", row.Balance),
			formatStat(row.SalaryMean, "%.2f"),
			formatStat(row.AdmissionsPercent, "%.1f%%"),
		})
	}
	table.Render()
}

func formatStat(v float64, format string) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf(format, v)
}
