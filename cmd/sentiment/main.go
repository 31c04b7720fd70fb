// Package main provides the sentiment CLI: batch scoring and model benchmarks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sentimentlab/sentiment-service/internal/app"
	"github.com/sentimentlab/sentiment-service/internal/config"
	"github.com/sentimentlab/sentiment-service/internal/dataset"
	"github.com/sentimentlab/sentiment-service/internal/evaluation"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
	"github.com/sentimentlab/sentiment-service/internal/scoring"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Sentiment - review scoring and model benchmarks",
		Long: `Sentiment classifies movie reviews as Positive or Negative with pretrained
text-classification models.

Run 'sentiment score' to write predictions for a dataset.
Run 'sentiment benchmark' to compare every model against the dataset labels.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		scoreCmd(),
		benchmarkCmd(),
		modelsCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the global flags shared by every subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, app.Logger(os.Stderr, cfg, verbose), nil
}

func addDatasetFlags(cmd *cobra.Command, outputFile string) {
	defaults := scoring.DefaultConfig()
	cmd.Flags().String("data_dir", defaults.DataDir, "directory holding the dataset")
	cmd.Flags().String("dataset_file", defaults.DatasetFile, "dataset file name")
	cmd.Flags().String("output_dir", defaults.OutputDir, "directory for the output file")
	cmd.Flags().String("output_file", outputFile, "output file name")
}

func datasetPaths(cmd *cobra.Command) scoring.Config {
	var c scoring.Config
	c.DataDir, _ = cmd.Flags().GetString("data_dir")
	c.DatasetFile, _ = cmd.Flags().GetString("dataset_file")
	c.OutputDir, _ = cmd.Flags().GetString("output_dir")
	c.OutputFile, _ = cmd.Flags().GetString("output_file")
	return c
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Predict sentiment for every review and write a CSV",
		Long: `Load a ';'-separated dataset with 'review' and 'sentiment' columns, predict
each review with one model and write the dataset plus a 'predictions' column
(1 = Positive, 0 = Negative) to output_dir/output_file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			model, _ := cmd.Flags().GetString("model")
			if !cmd.Flags().Changed("model") {
				model = cfg.Model
			}
			v, err := sentiment.DefaultRegistry().Get(model)
			if err != nil {
				return err
			}

			e, err := app.OpenEvaluator(cmd.Context(), cfg, v, log, app.Options{Progress: progressBar})
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			summary, err := scoring.New(e, log).Run(cmd.Context(), datasetPaths(cmd))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d predictions (%d positive) to %s\n",
				summary.Rows, summary.Positive, summary.Output)
			return nil
		},
	}

	addDatasetFlags(cmd, scoring.DefaultConfig().OutputFile)
	cmd.Flags().String("model", sentiment.DistilBert.Name, "model to score with ("+strings.Join(sentiment.DefaultRegistry().Names(), "|")+")")

	return cmd
}

func benchmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare every model against the dataset labels",
		Long: `Run each model over the dataset, compute Accuracy, Precision, Recall,
F1-score and Speed (seconds), and append one block per model to
output_dir/output_file. With benchmark.redis_url set, results are also
recorded as time series in Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			names, _ := cmd.Flags().GetStringSlice("models")
			variants, err := sentiment.DefaultRegistry().Select(names)
			if err != nil {
				return err
			}

			paths := datasetPaths(cmd)
			ds, err := dataset.NewLoader(log).Load(paths.InputPath())
			if err != nil {
				return err
			}

			opts := []evaluation.BenchmarkOption{evaluation.WithLogger(log)}
			if cfg.Benchmark.RedisURL != "" {
				history, err := evaluation.NewRedisHistory(cfg.Benchmark.RedisURL)
				if err != nil {
					log.WithError(err).Warn("Benchmark history disabled")
				} else {
					defer func() { _ = history.Close() }()
					history.SetTTL(cfg.Benchmark.HistoryTTL)
					opts = append(opts, evaluation.WithHistory(history))
					log.Info("Recording benchmark history in Redis")
				}
			}

			opened, err := app.OpenEvaluators(cmd.Context(), cfg, variants, log, app.Options{Progress: progressBar})
			if err != nil {
				return err
			}
			defer app.CloseAll(opened, log)

			evaluators := make([]sentiment.Evaluator, len(opened))
			for i, e := range opened {
				evaluators[i] = e
			}

			reportPath := filepath.Join(paths.OutputDir, paths.OutputFile)
			results, err := evaluation.NewBenchmark(reportPath, opts...).Run(cmd.Context(), ds, evaluators)
			for _, r := range results {
				_ = evaluation.WriteResult(cmd.OutOrStdout(), r)
			}
			return err
		},
	}

	addDatasetFlags(cmd, "benchmark_report.txt")
	cmd.Flags().StringSlice("models", nil, "models to benchmark, in order (default all)")

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tLABELS")
			for _, v := range sentiment.DefaultRegistry().Variants() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.Model, strings.Join(v.Labels, ", "))
			}
			_ = w.Flush()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sentiment %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}
}
