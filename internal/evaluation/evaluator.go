package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sentimentlab/sentiment-service/internal/dataset"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

// Benchmark runs evaluators over a labeled dataset and appends one report
// block per evaluator.
type Benchmark struct {
	reportPath string
	history    History
	log        *logger.Logger
	now        func() time.Time
}

// BenchmarkOption configures a Benchmark.
type BenchmarkOption func(*Benchmark)

// WithHistory also records results in h.
func WithHistory(h History) BenchmarkOption {
	return func(b *Benchmark) { b.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) BenchmarkOption {
	return func(b *Benchmark) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBenchmark creates a benchmark that appends to reportPath.
func NewBenchmark(reportPath string, opts ...BenchmarkOption) *Benchmark {
	b := &Benchmark{
		reportPath: reportPath,
		log:        logger.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run evaluates each evaluator in order. The report block for an evaluator is
// appended as soon as it finishes, so earlier blocks survive a later failure.
func (b *Benchmark) Run(ctx context.Context, ds *dataset.Dataset, evaluators []sentiment.Evaluator) ([]Result, error) {
	records := ds.Records()
	reviews := make([]string, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		reviews[i] = rec.Review
		labels[i] = rec.Sentiment
	}
	runID := uuid.New().String()

	results := make([]Result, 0, len(evaluators))
	for _, e := range evaluators {
		r, err := b.evaluate(ctx, e, reviews, labels)
		if err != nil {
			return results, fmt.Errorf("benchmarking %s: %w", e.Name(), err)
		}
		r.RunID = runID

		if err := AppendReport(b.reportPath, r); err != nil {
			return results, err
		}
		b.log.Info(fmt.Sprintf("Results for %s written to %s", r.Model, b.reportPath),
			"accuracy", r.Metrics.Accuracy, "f1", r.Metrics.F1, "speed", r.Speed.String())

		if b.history != nil {
			if err := b.history.Record(ctx, r); err != nil {
				b.log.WithError(err).Warn("Failed to record benchmark history", "model", r.Model)
			}
		}

		results = append(results, r)
	}

	return results, nil
}

func (b *Benchmark) evaluate(ctx context.Context, e sentiment.Evaluator, reviews []string, labels []int) (Result, error) {
	start := b.now()
	preds, err := e.PredictSeries(ctx, reviews)
	elapsed := b.now().Sub(start)
	if err != nil {
		return Result{}, err
	}

	metrics, err := Score(labels, sentiment.Ints(preds))
	if err != nil {
		return Result{}, err
	}

	return Result{
		Model:     e.Name(),
		Metrics:   metrics,
		Speed:     elapsed,
		Samples:   len(reviews),
		Timestamp: start,
	}, nil
}
