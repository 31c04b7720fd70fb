package sentiment

import (
	"context"
	"fmt"

	"github.com/sentimentlab/sentiment-service/internal/inference"
	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

// PipelineEvaluator implements Evaluator on top of an inference pipeline.
// It is safe for concurrent use once constructed.
type PipelineEvaluator struct {
	variant  Variant
	pipeline inference.Pipeline
	opts     inference.ClassifyOptions
	cache    *LabelCache
	progress ProgressFunc
	log      *logger.Logger
}

var _ Evaluator = (*PipelineEvaluator)(nil)

// Option configures a PipelineEvaluator.
type Option func(*PipelineEvaluator)

// WithCache enables raw-label caching.
func WithCache(c *LabelCache) Option {
	return func(e *PipelineEvaluator) { e.cache = c }
}

// WithProgress sets the progress reporter used by PredictSeries.
func WithProgress(p ProgressFunc) Option {
	return func(e *PipelineEvaluator) {
		if p != nil {
			e.progress = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *PipelineEvaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxLength sets the truncation length passed to the pipeline.
func WithMaxLength(n int) Option {
	return func(e *PipelineEvaluator) {
		if n > 0 {
			e.opts.MaxLength = n
		}
	}
}

// NewEvaluator creates an evaluator for v backed by p.
func NewEvaluator(v Variant, p inference.Pipeline, opts ...Option) *PipelineEvaluator {
	e := &PipelineEvaluator{
		variant:  v,
		pipeline: p,
		opts:     inference.DefaultClassifyOptions(),
		progress: NoProgress,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.variant.Normalize == nil {
		e.variant.Normalize = NormalizeBinary
	}
	e.log = e.log.WithModel(v.Name)
	return e
}

// Open creates an evaluator and, when warmup is set, waits for the model to
// answer a probe. A failed warm-up is returned as an error.
func Open(ctx context.Context, v Variant, p inference.Pipeline, warmup bool, opts ...Option) (*PipelineEvaluator, error) {
	e := NewEvaluator(v, p, opts...)
	if !warmup {
		return e, nil
	}

	e.log.Info("Warming up model", "pipeline_model", v.Model)
	if err := e.Ready(ctx); err != nil {
		return nil, fmt.Errorf("warming up %s: %w", v.Name, err)
	}
	return e, nil
}

// Name returns the variant name.
func (e *PipelineEvaluator) Name() string { return e.variant.Name }

// Model returns the pipeline model id.
func (e *PipelineEvaluator) Model() string { return e.variant.Model }

// PredictSingle classifies text and normalizes the label.
func (e *PipelineEvaluator) PredictSingle(ctx context.Context, text string) (Sentiment, error) {
	pred, err := e.classify(ctx, text)
	if err != nil {
		return Negative, err
	}

	s, err := e.variant.Normalize(pred.Label)
	if err != nil {
		return Negative, errors.MLError("normalize label", err).
			WithDetail("model", e.variant.Name).
			WithDetail("label", pred.Label)
	}
	return s, nil
}

// PredictSeries classifies texts one at a time, in order, and stops at the first error.
func (e *PipelineEvaluator) PredictSeries(ctx context.Context, texts []string) ([]Sentiment, error) {
	bar := e.progress(len(texts), "Predicting using "+e.variant.Name)
	defer func() { _ = bar.Finish() }()

	out := make([]Sentiment, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := e.PredictSingle(ctx, text)
		if err != nil {
			e.log.WithError(err).Error("Prediction failed", "index", i)
			return nil, fmt.Errorf("predicting item %d: %w", i, err)
		}
		out = append(out, s)
		_ = bar.Add(1)
	}

	e.log.Debug("Predicted series", "count", len(out))
	return out, nil
}

// Ready reports whether the pipeline can serve this model.
func (e *PipelineEvaluator) Ready(ctx context.Context) error {
	return e.pipeline.Ready(ctx, e.variant.Model)
}

// Close releases the pipeline and cache.
func (e *PipelineEvaluator) Close() error {
	if st := e.cache.Stats(); st.MaxSize > 0 {
		e.log.Debug("Label cache stats", "hits", st.Hits, "misses", st.Misses)
	}
	e.cache.Close()
	return e.pipeline.Close()
}

func (e *PipelineEvaluator) classify(ctx context.Context, text string) (inference.Prediction, error) {
	if pred, ok := e.cache.Get(e.variant.Model, text); ok {
		return pred, nil
	}

	pred, err := e.pipeline.Classify(ctx, e.variant.Model, text, e.opts)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return pred, err
		}
		return pred, errors.MLError("classify", err).WithDetail("model", e.variant.Name)
	}

	e.cache.Set(e.variant.Model, text, pred)
	return pred, nil
}
