// Package scoring runs an evaluator over a review dataset and writes the
// predictions next to the original columns.
package scoring

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sentimentlab/sentiment-service/internal/dataset"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

// PredictionsColumn is the column appended to the output file.
const PredictionsColumn = "predictions"

// Config locates the input and output files.
type Config struct {
	DataDir     string
	DatasetFile string
	OutputDir   string
	OutputFile  string
}

// DefaultConfig returns the CLI defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		DatasetFile: "IMDB-movie-reviews.csv",
		OutputDir:   "outputs",
		OutputFile:  "output.csv",
	}
}

// InputPath is DataDir/DatasetFile.
func (c Config) InputPath() string {
	return filepath.Join(c.DataDir, c.DatasetFile)
}

// OutputPath is OutputDir/OutputFile.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// Summary describes a finished scoring run.
type Summary struct {
	Model    string
	Rows     int
	Positive int
	Output   string
	Duration time.Duration
}

// Scorer loads a dataset, predicts every review and writes the result.
type Scorer struct {
	evaluator sentiment.Evaluator
	loader    *dataset.Loader
	log       *logger.Logger
}

// New creates a scorer. log may be nil.
func New(e sentiment.Evaluator, log *logger.Logger) *Scorer {
	if log == nil {
		log = logger.Discard()
	}
	return &Scorer{
		evaluator: e,
		loader:    dataset.NewLoader(log),
		log:       log,
	}
}

// Run scores cfg.InputPath() and writes cfg.OutputPath(). The output
// directory is created if missing.
func (s *Scorer) Run(ctx context.Context, cfg Config) (Summary, error) {
	start := time.Now()

	ds, err := s.loader.Load(cfg.InputPath())
	if err != nil {
		return Summary{}, err
	}

	preds, err := s.evaluator.PredictSeries(ctx, ds.Reviews())
	if err != nil {
		return Summary{}, fmt.Errorf("scoring with %s: %w", s.evaluator.Name(), err)
	}

	values := sentiment.Ints(preds)
	out := cfg.OutputPath()
	if err := ds.WriteCSVFile(out, PredictionsColumn, values); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Model:    s.evaluator.Name(),
		Rows:     len(values),
		Output:   out,
		Duration: time.Since(start),
	}
	for _, v := range values {
		summary.Positive += v
	}

	s.log.WithModel(summary.Model).Info("Predictions written",
		"path", out,
		"rows", summary.Rows,
		"positive", summary.Positive,
		"duration", summary.Duration,
	)
	return summary, nil
}
