package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Octrafic/qakit/internal/cli"
	"github.com/Octrafic/qakit/internal/clierr"
	"github.com/Octrafic/qakit/internal/config"
	"github.com/Octrafic/qakit/internal/core/metrics"
	"github.com/Octrafic/qakit/internal/infra/logger"
	"github.com/Octrafic/qakit/internal/infra/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const reportPrefix = "test-metrics-report"

var version = "dev"

type options struct {
	configPath    string
	csvPath       string
	outDir        string
	jsonPath      string
	debugFilePath string
}

// now is replaced in tests to pin the report timestamp
var now = time.Now

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "testmetrics",
		Short:         "Summarize a CSV test matrix into a metrics report",
		Long:          `testmetrics reads the test matrix CSV, computes pass and execution rates per feature, role, device size and priority, and writes a timestamped text report.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: "+config.DefaultFile+" if present)")
	flags.StringVarP(&opts.csvPath, "csv", "c", "", "Path to the test matrix CSV")
	flags.StringVarP(&opts.outDir, "out-dir", "o", "", "Directory for the report file")
	flags.StringVar(&opts.jsonPath, "json", "", "Also write the analysis as JSON to this path")
	flags.StringVar(&opts.debugFilePath, "debug-file", "", "Write debug logs to this file")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.debugFilePath != "" {
		if err := logger.Init(true, opts.debugFilePath); err != nil {
			return clierr.Wrap(1, "failed to initialize logger", err)
		}
		defer logger.Close()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return clierr.Wrap(1, "failed to load configuration", err)
	}
	if opts.csvPath != "" {
		cfg.Metrics.CSVPath = opts.csvPath
	}
	if opts.outDir != "" {
		cfg.Metrics.ReportDir = opts.outDir
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return clierr.Wrap(1, "invalid configuration", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "🔍 Analyzing test metrics...")

	records, err := metrics.LoadFile(cfg.Metrics.CSVPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintln(out, cli.Error(fmt.Sprintf("❌ Error: %s not found!", cfg.Metrics.CSVPath)))
		} else {
			_, _ = fmt.Fprintln(out, cli.Error(fmt.Sprintf("❌ Error loading CSV: %v", err)))
		}
		return clierr.Wrap(1, "failed to load test matrix", err)
	}
	_, _ = fmt.Fprintln(out, cli.Success(fmt.Sprintf("✅ Loaded %d test cases from %s", len(records), cfg.Metrics.CSVPath)))

	analysis := metrics.Analyze(records, cfg.Metrics.CSVPath)
	at := now()
	report := metrics.RenderReport(analysis, metrics.ReportOptions{
		Project:     cfg.Metrics.ProjectName,
		GeneratedAt: at,
	})

	path, err := storage.WriteTimestamped(cfg.Metrics.ReportDir, reportPrefix, ".txt", at, []byte(report))
	if err != nil {
		return clierr.Wrap(1, "failed to save report", err)
	}
	logger.Info("Report written",
		logger.String("path", path),
		logger.Int("records", len(records)),
		logger.Float64("pass_rate", analysis.Overall.PassRate))

	if opts.jsonPath != "" {
		if err := storage.SaveJSON(opts.jsonPath, analysis); err != nil {
			return clierr.Wrap(1, "failed to write analysis", err)
		}
		logger.Info("Analysis written", logger.String("path", opts.jsonPath))
	}

	_, _ = fmt.Fprintln(out, cli.Success("✅ Analysis complete! Report saved to: "+path))
	_, _ = fmt.Fprintln(out, "\n"+report)
	return nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
