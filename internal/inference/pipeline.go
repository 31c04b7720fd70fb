// Package inference provides text-classification pipelines.
//
// Two implementations exist: HTTPPipeline talks to a server speaking the
// HuggingFace Inference API wire format, and MockPipeline classifies from a
// small lexicon so tests and air-gapped runs need no model server.
package inference

import (
	"context"
	"time"

	"github.com/sentimentlab/sentiment-service/internal/config"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

// DefaultMaxLength is the token limit applied when truncating inputs.
const DefaultMaxLength = 512

// Prediction is the raw label/score pair returned by a pipeline.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyOptions controls a single classification call.
type ClassifyOptions struct {
	Truncation bool
	MaxLength  int
}

// DefaultClassifyOptions returns truncation at DefaultMaxLength tokens.
func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{
		Truncation: true,
		MaxLength:  DefaultMaxLength,
	}
}

// Pipeline classifies text with a named model.
type Pipeline interface {
	// Classify returns the top-scoring label for text.
	Classify(ctx context.Context, model, text string, opts ClassifyOptions) (Prediction, error)
	// Ready returns nil once model can serve requests.
	Ready(ctx context.Context, model string) error
	// Close releases resources held by the pipeline.
	Close() error
}

// Observer receives one call per classification attempt.
type Observer interface {
	ObserveInference(model string, duration time.Duration, err error)
}

// Open builds the pipeline selected by cfg.
func Open(cfg config.InferenceConfig, log *logger.Logger, obs Observer) (Pipeline, error) {
	if cfg.Mock {
		log.Info("ML mock mode enabled")
		return NewMockPipeline(), nil
	}

	return NewHTTPPipeline(HTTPConfig{
		BaseURL:           cfg.URL,
		Token:             cfg.Token,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		WaitForModel:      cfg.WaitForModel,
	}, log, obs)
}
