package inference

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentlab/sentiment-service/internal/config"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

func TestMockPipeline_Binary(t *testing.T) {
	m := NewMockPipeline()
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"Loved it", "POSITIVE"},
		{"Hated it", "NEGATIVE"},
		{"A great, wonderful film", "POSITIVE"},
		{"", "NEGATIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			pred, err := m.Classify(ctx, "distilbert-base-uncased-finetuned-sst-2-english", tt.text, DefaultClassifyOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.Label)
			assert.True(t, pred.Score > 0 && pred.Score < 1)
		})
	}
}

func TestMockPipeline_Stars(t *testing.T) {
	m := NewMockPipeline()
	model := "nlptown/bert-base-multilingual-uncased-sentiment"

	tests := []struct {
		text string
		want string
	}{
		{"great great great", "5 stars"},
		{"great", "4 stars"},
		{"plain", "3 stars"},
		{"bad", "2 stars"},
		{"bad awful terrible", "1 star"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			pred, err := m.Classify(context.Background(), model, tt.text, DefaultClassifyOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.Label)
		})
	}
}

func TestMockPipeline_Truncation(t *testing.T) {
	m := NewMockPipeline()
	text := "bad " + strings.Repeat("great ", 10)

	pred, err := m.Classify(context.Background(), "m", text, ClassifyOptions{Truncation: true, MaxLength: 1})
	require.NoError(t, err)
	assert.Equal(t, "NEGATIVE", pred.Label)

	pred, err = m.Classify(context.Background(), "m", text, DefaultClassifyOptions())
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", pred.Label)
}

func TestMockPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockPipeline().Classify(ctx, "m", "text", DefaultClassifyOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, NewMockPipeline().Ready(ctx, "m"), context.Canceled)
}

func TestOpen(t *testing.T) {
	cfg := config.Default().Inference

	cfg.Mock = true
	p, err := Open(cfg, logger.Discard(), nil)
	require.NoError(t, err)
	assert.IsType(t, &MockPipeline{}, p)

	cfg.Mock = false
	p, err = Open(cfg, logger.Discard(), nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPPipeline{}, p)

	cfg.URL = "not a url"
	_, err = Open(cfg, logger.Discard(), nil)
	assert.Error(t, err)
}
