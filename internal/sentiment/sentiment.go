// Package sentiment turns raw text-classification output into a binary
// sentiment. Each model variant pairs a pipeline model id with a Normalizer
// that maps the model's native labels onto Negative/Positive.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// Sentiment is a normalized prediction: 0 for negative, 1 for positive.
type Sentiment int

const (
	Negative Sentiment = 0
	Positive Sentiment = 1
)

// String returns "Positive" or "Negative".
func (s Sentiment) String() string {
	if s == Positive {
		return "Positive"
	}
	return "Negative"
}

// Int returns the 0/1 encoding used by datasets and output files.
func (s Sentiment) Int() int {
	return int(s)
}

// ErrUnrecognizedLabel is returned when a raw label cannot be normalized.
var ErrUnrecognizedLabel = errors.New("unrecognized label")

// Normalizer maps a raw model label to a Sentiment.
type Normalizer func(rawLabel string) (Sentiment, error)

// NormalizeBinary maps "POSITIVE" to Positive and everything else to Negative.
func NormalizeBinary(rawLabel string) (Sentiment, error) {
	if rawLabel == "POSITIVE" {
		return Positive, nil
	}
	return Negative, nil
}

// NormalizeStars reads the leading digit of a star-rating label. Three stars
// or more is Positive.
func NormalizeStars(rawLabel string) (Sentiment, error) {
	if rawLabel == "" || !unicode.IsDigit(rune(rawLabel[0])) {
		return Negative, fmt.Errorf("%w: %q", ErrUnrecognizedLabel, rawLabel)
	}

	stars, _ := strconv.Atoi(rawLabel[:1])
	if stars >= 3 {
		return Positive, nil
	}
	return Negative, nil
}

// Evaluator predicts sentiment for single texts and ordered batches.
type Evaluator interface {
	// Name is the short variant name, e.g. "DistilBert".
	Name() string
	// Model is the pipeline model id.
	Model() string
	PredictSingle(ctx context.Context, text string) (Sentiment, error)
	// PredictSeries returns one prediction per text, in order.
	PredictSeries(ctx context.Context, texts []string) ([]Sentiment, error)
}

// Ints converts predictions to their 0/1 encoding.
func Ints(preds []Sentiment) []int {
	out := make([]int, len(preds))
	for i, p := range preds {
		out[i] = p.Int()
	}
	return out
}
