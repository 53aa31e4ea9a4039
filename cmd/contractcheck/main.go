package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Octrafic/qakit/internal/cli"
	"github.com/Octrafic/qakit/internal/clierr"
	"github.com/Octrafic/qakit/internal/config"
	"github.com/Octrafic/qakit/internal/core/contract"
	"github.com/Octrafic/qakit/internal/infra/logger"
	"github.com/Octrafic/qakit/internal/infra/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	configPath    string
	apiURL        string
	specFile      string
	resultsPath   string
	debugFilePath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "contractcheck",
		Short:         "Replay OpenAPI operations against a running server",
		Long:          `contractcheck checks the server is healthy, validates the OpenAPI document, logs in a test user and sends one request per operation, failing on any 5xx answer or transport error.`,
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
	flags.StringVarP(&opts.apiURL, "url", "u", "", "API base URL")
	flags.StringVarP(&opts.specFile, "spec", "s", "", "Path to the OpenAPI document")
	flags.StringVar(&opts.resultsPath, "results", "", "Write the run summary as JSON to this path")
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
	if opts.apiURL != "" {
		cfg.Contract.BaseURL = opts.apiURL
	}
	if opts.specFile != "" {
		cfg.Contract.SpecPath = opts.specFile
	}
	if err := cfg.Contract.Validate(); err != nil {
		return clierr.Wrap(1, "invalid configuration", err)
	}

	logger.Info("Starting contract run",
		logger.String("base_url", cfg.Contract.BaseURL),
		logger.String("spec", cfg.Contract.SpecPath))

	printer := cli.NewContractPrinter(cmd.OutOrStdout(), 0)
	printer.Header()

	summary, err := contract.NewRunner(cfg.Contract, printer).Run(cmd.Context())
	if err != nil {
		printer.Failed()
		return clierr.Wrap(1, "contract run aborted", err)
	}

	printer.Summary(summary)

	if opts.resultsPath != "" {
		if err := storage.SaveJSON(opts.resultsPath, summary); err != nil {
			return clierr.Wrap(1, "failed to write results", err)
		}
		logger.Info("Results written", logger.String("path", opts.resultsPath))
	}

	if !summary.OK() {
		return clierr.Newf(summary.ExitCode(), "%d contract test(s) failed", summary.Failed)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(clierr.ExitCodeOf(err))
	}
}
