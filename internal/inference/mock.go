package inference

import (
	"context"
	"math"
	"strings"
	"unicode"
)

var positiveWords = map[string]bool{
	"love": true, "loved": true, "lovely": true, "great": true, "good": true,
	"excellent": true, "amazing": true, "wonderful": true, "best": true,
	"fantastic": true, "enjoyed": true, "brilliant": true, "perfect": true,
	"beautiful": true, "superb": true, "fun": true, "like": true, "liked": true,
}

var negativeWords = map[string]bool{
	"hate": true, "hated": true, "bad": true, "terrible": true, "awful": true,
	"worst": true, "boring": true, "poor": true, "horrible": true,
	"disappointing": true, "waste": true, "dull": true, "stupid": true,
	"not": true, "never": true,
}

// MockPipeline is a deterministic lexicon classifier. Models whose id names a
// star-rating classifier get "N star(s)" labels; all others get POSITIVE/NEGATIVE.
type MockPipeline struct{}

// NewMockPipeline returns a mock pipeline.
func NewMockPipeline() *MockPipeline {
	return &MockPipeline{}
}

// Classify scores text by counting lexicon hits.
func (m *MockPipeline) Classify(ctx context.Context, model, text string, opts ClassifyOptions) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	words := tokenize(text)
	if opts.Truncation && opts.MaxLength > 0 && len(words) > opts.MaxLength {
		words = words[:opts.MaxLength]
	}

	balance := 0
	for _, w := range words {
		switch {
		case positiveWords[w]:
			balance++
		case negativeWords[w]:
			balance--
		}
	}

	score := math.Min(0.5+0.1*math.Abs(float64(balance)), 0.99)

	if isStarModel(model) {
		return Prediction{Label: starLabel(balance), Score: score}, nil
	}

	if balance > 0 {
		return Prediction{Label: "POSITIVE", Score: score}, nil
	}
	return Prediction{Label: "NEGATIVE", Score: score}, nil
}

// Ready always succeeds.
func (m *MockPipeline) Ready(ctx context.Context, model string) error {
	return ctx.Err()
}

// Close is a no-op.
func (m *MockPipeline) Close() error {
	return nil
}

func isStarModel(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "nlptown") || strings.Contains(m, "multilingual")
}

func starLabel(balance int) string {
	stars := 3 + balance
	switch {
	case stars <= 1:
		return "1 star"
	case stars >= 5:
		return "5 stars"
	default:
		return string(rune('0'+stars)) + " stars"
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
