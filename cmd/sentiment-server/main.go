// Package main provides the sentiment HTTP predictor binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sentimentlab/sentiment-service/internal/app"
	"github.com/sentimentlab/sentiment-service/internal/config"
	"github.com/sentimentlab/sentiment-service/internal/evaluation"
	"github.com/sentimentlab/sentiment-service/internal/metrics"
	"github.com/sentimentlab/sentiment-service/internal/server"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentiment-server",
		Short: "Sentiment Server - HTTP review sentiment predictor",
		Long: `Sentiment Server loads one model at startup and serves predictions over HTTP.

Endpoints:
  POST /predict     {"text": "..."} -> {"sentiment": "Positive"|"Negative"}
  GET  /health      liveness
  GET  /ready       inference pipeline reachability
  GET  /v1/models   available models
  GET  /v1/benchmarks/{model}/{metric}  benchmark history (with benchmark.redis_url)
  GET  /metrics     Prometheus metrics (when enabled)

Examples:
  sentiment-server                        # Start with defaults
  sentiment-server --port 9000            # Custom port
  sentiment-server --model MultiBert      # Serve the star-rating model`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().Int("port", 8080, "HTTP server port")
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().String("model", sentiment.DistilBert.Name, "model to serve")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sentiment-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override from flags
	if cmd.Flags().Changed("port") {
		appCfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("host") {
		appCfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("model") {
		appCfg.Model, _ = cmd.Flags().GetString("model")
	}

	log := app.Logger(os.Stdout, appCfg, verbose)
	log.Info("Starting Sentiment Server", "version", version, "model", appCfg.Model, "addr", appCfg.Address())

	registry := sentiment.DefaultRegistry()
	variant, err := registry.Get(appCfg.Model)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if appCfg.Observability.MetricsEnabled {
		m = metrics.New()
		log.Info("Metrics enabled", "path", appCfg.Observability.MetricsPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	evaluator, err := app.OpenEvaluator(ctx, appCfg, variant, log, app.Options{Metrics: m})
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer func() {
		if err := evaluator.Close(); err != nil {
			log.Warn("Error closing evaluator", "error", err)
		}
	}()

	srvCfg := server.DefaultConfig()
	srvCfg.Host = appCfg.Host
	srvCfg.Port = appCfg.Port
	srvCfg.Version = version
	srvCfg.RateLimit = appCfg.Security.RateLimit
	srvCfg.TrustedProxies = appCfg.TrustedProxyList()
	srvCfg.CORSOrigins = appCfg.CORSOriginList()
	srvCfg.MetricsPath = appCfg.Observability.MetricsPath

	var srvOpts []server.Option
	if appCfg.Benchmark.RedisURL != "" {
		history, err := evaluation.NewRedisHistory(appCfg.Benchmark.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Benchmark history endpoint disabled")
		} else {
			defer func() { _ = history.Close() }()
			srvOpts = append(srvOpts, server.WithHistory(history))
		}
	}

	srv, err := server.New(srvCfg, evaluator, registry, m, log, srvOpts...)
	if err != nil {
		return err
	}
	if appCfg.Security.RateLimit > 0 {
		log.Info("Rate limiting enabled", "requests_per_second", appCfg.Security.RateLimit)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return nil
}
