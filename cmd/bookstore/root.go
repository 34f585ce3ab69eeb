package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/config"
	"github.com/David-Botos/bookstore-ingress/pkg/logging"
	"github.com/David-Botos/bookstore-ingress/pkg/pipeline"
	"github.com/David-Botos/bookstore-ingress/pkg/transfer"
)

var rootFlags struct {
	envFile string
}

// appState is built in PersistentPreRunE and shared by every subcommand
type appState struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *transfer.Metrics
}

var app appState

var rootCmd = &cobra.Command{
	Use:           "bookstore",
	Short:         "Bookstore ingestion pipelines and analytics dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(rootFlags.envFile); err != nil {
			return err
		}
		var opts []config.Option
		if f := cmd.Flags().Lookup("hosted"); f != nil && f.Changed {
			hosted, _ := cmd.Flags().GetBool("hosted")
			opts = append(opts, config.WithHosted(hosted))
		}
		cfg, err := config.LoadConfig(opts...)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}

		app.cfg = cfg
		app.logger = logger
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		app.metrics = transfer.NewMetrics(app.registry, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			app.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.envFile, "env-file", "", "Path to a .env file (defaults to ./.env when present)")
}

func newRunner() *pipeline.Runner {
	return pipeline.NewRunner(app.cfg, app.metrics, app.logger)
}

// overrideString replaces dst when the flag was set explicitly
func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		*dst = v
	}
}
