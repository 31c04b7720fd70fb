// Package app wires configuration into ready-to-use evaluators for the binaries.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sentimentlab/sentiment-service/internal/config"
	"github.com/sentimentlab/sentiment-service/internal/inference"
	"github.com/sentimentlab/sentiment-service/internal/metrics"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
	"github.com/sentimentlab/sentiment-service/internal/pkg/security"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

// Options carries the optional collaborators of an evaluator.
type Options struct {
	Metrics  *metrics.Metrics
	Progress sentiment.ProgressFunc
}

// OpenEvaluator opens a pipeline for v and wraps it in an evaluator. With
// inference.warmup set the pipeline is probed before returning.
func OpenEvaluator(ctx context.Context, cfg *config.Config, v sentiment.Variant, log *logger.Logger, opts Options) (*sentiment.PipelineEvaluator, error) {
	var obs inference.Observer
	if opts.Metrics != nil {
		obs = opts.Metrics
	}

	pipeline, err := inference.Open(cfg.Inference, log, obs)
	if err != nil {
		return nil, fmt.Errorf("open pipeline for %s: %w", v.Name, err)
	}

	cache, err := sentiment.NewLabelCache(cfg.Cache.Size)
	if err != nil {
		_ = pipeline.Close()
		return nil, fmt.Errorf("create label cache: %w", err)
	}
	if cache != nil && opts.Metrics != nil {
		cache.SetMetrics(opts.Metrics)
	}

	evalOpts := []sentiment.Option{
		sentiment.WithLogger(log),
		sentiment.WithCache(cache),
		sentiment.WithMaxLength(cfg.Inference.MaxLength),
	}
	if opts.Progress != nil {
		evalOpts = append(evalOpts, sentiment.WithProgress(opts.Progress))
	}

	e, err := sentiment.Open(ctx, v, pipeline, cfg.Inference.Warmup, evalOpts...)
	if err != nil {
		cache.Close()
		_ = pipeline.Close()
		return nil, err
	}

	log.WithModel(v.Name).Info("Evaluator ready",
		"pipeline_model", v.Model,
		"mock", cfg.Inference.Mock,
		"token", security.MaskSecret(cfg.Inference.Token),
		"cache_size", cfg.Cache.Size,
	)
	return e, nil
}

// OpenEvaluators opens one evaluator per variant, in order. On failure the
// evaluators opened so far are closed.
func OpenEvaluators(ctx context.Context, cfg *config.Config, variants []sentiment.Variant, log *logger.Logger, opts Options) ([]*sentiment.PipelineEvaluator, error) {
	out := make([]*sentiment.PipelineEvaluator, 0, len(variants))
	for _, v := range variants {
		e, err := OpenEvaluator(ctx, cfg, v, log, opts)
		if err != nil {
			CloseAll(out, log)
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CloseAll closes evaluators, logging failures.
func CloseAll(evaluators []*sentiment.PipelineEvaluator, log *logger.Logger) {
	for _, e := range evaluators {
		if err := e.Close(); err != nil {
			log.WithModel(e.Name()).Warn("Error closing evaluator", "error", err)
		}
	}
}

// Logger builds a logger writing to w from config, forcing debug when verbose.
func Logger(w io.Writer, cfg *config.Config, verbose bool) *logger.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.NewWithWriter(w, level, cfg.Log.Format)
}
