package scoring

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentlab/sentiment-service/internal/inference"
	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

func writeDataset(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readOutput(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

type failingEvaluator struct{}

func (failingEvaluator) Name() string  { return "DistilBert" }
func (failingEvaluator) Model() string { return sentiment.DistilBert.Model }
func (failingEvaluator) PredictSingle(context.Context, string) (sentiment.Sentiment, error) {
	return sentiment.Negative, errors.MLError("inference failed", stderrors.New("boom"))
}
func (failingEvaluator) PredictSeries(context.Context, []string) ([]sentiment.Sentiment, error) {
	return nil, errors.MLError("inference failed", stderrors.New("boom"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("data", "IMDB-movie-reviews.csv"), cfg.InputPath())
	assert.Equal(t, filepath.Join("outputs", "output.csv"), cfg.OutputPath())
}

func TestRun_EndToEnd(t *testing.T) {
	root := t.TempDir()
	cfg := Config{
		DataDir:     filepath.Join(root, "data"),
		DatasetFile: "reviews.csv",
		OutputDir:   filepath.Join(root, "outputs", "nested"),
		OutputFile:  "output.csv",
	}
	writeDataset(t, cfg.DataDir, cfg.DatasetFile, "review;sentiment\nLoved it;positive\nHated it;negative\n")

	e := sentiment.NewEvaluator(sentiment.DistilBert, inference.NewMockPipeline())
	summary, err := New(e, nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "DistilBert", summary.Model)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 1, summary.Positive)
	assert.Equal(t, cfg.OutputPath(), summary.Output)

	rows := readOutput(t, cfg.OutputPath())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"review", "sentiment", PredictionsColumn}, rows[0])

	for _, row := range rows[1:] {
		assert.Contains(t, []string{"0", "1"}, row[2])
	}
	assert.Equal(t, []string{"Loved it", "1", "1"}, rows[1])
	assert.Equal(t, []string{"Hated it", "0", "0"}, rows[2])
}

func TestRun_MultiBert(t *testing.T) {
	root := t.TempDir()
	cfg := Config{
		DataDir:     root,
		DatasetFile: "reviews.csv",
		OutputDir:   root,
		OutputFile:  "multi.csv",
	}
	writeDataset(t, root, cfg.DatasetFile, "review;sentiment\nA wonderful, beautiful film;positive\nBoring and awful;negative\nok;\n")

	e := sentiment.NewEvaluator(sentiment.MultiBert, inference.NewMockPipeline())
	summary, err := New(e, nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)

	rows := readOutput(t, cfg.OutputPath())
	require.Len(t, rows, 4)
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "0", rows[2][2])
	// No lexicon hits rates three stars, which counts as positive.
	assert.Equal(t, "1", rows[3][2])
}

func TestRun_MissingDataset(t *testing.T) {
	root := t.TempDir()
	cfg := Config{DataDir: root, DatasetFile: "missing.csv", OutputDir: root, OutputFile: "out.csv"}

	e := sentiment.NewEvaluator(sentiment.DistilBert, inference.NewMockPipeline())
	_, err := New(e, nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeDatasetError))

	_, statErr := os.Stat(cfg.OutputPath())
	assert.True(t, os.IsNotExist(statErr), "no output on load failure")
}

func TestRun_ModelFailurePropagates(t *testing.T) {
	root := t.TempDir()
	cfg := Config{DataDir: root, DatasetFile: "reviews.csv", OutputDir: root, OutputFile: "out.csv"}
	writeDataset(t, root, cfg.DatasetFile, "review;sentiment\nLoved it;positive\n")

	_, err := New(failingEvaluator{}, nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMLError))

	_, statErr := os.Stat(cfg.OutputPath())
	assert.True(t, os.IsNotExist(statErr), "no output on model failure")
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	cfg := Config{DataDir: root, DatasetFile: "reviews.csv", OutputDir: root, OutputFile: "out.csv"}
	writeDataset(t, root, cfg.DatasetFile, "review;sentiment\nLoved it;positive\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := sentiment.NewEvaluator(sentiment.DistilBert, inference.NewMockPipeline())
	_, err := New(e, nil).Run(ctx, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
