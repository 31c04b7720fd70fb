package sentiment

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentlab/sentiment-service/internal/inference"
	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

// fakePipeline returns labels from a fixed table and counts calls.
type fakePipeline struct {
	mu       sync.Mutex
	labels   map[string]string
	failOn   map[string]error
	readyErr error
	calls    int
	lastOpts inference.ClassifyOptions
	closed   bool
}

func (f *fakePipeline) Classify(ctx context.Context, model, text string, opts inference.ClassifyOptions) (inference.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastOpts = opts
	if err, ok := f.failOn[text]; ok {
		return inference.Prediction{}, err
	}
	return inference.Prediction{Label: f.labels[text], Score: 0.9}, nil
}

func (f *fakePipeline) Ready(ctx context.Context, model string) error { return f.readyErr }

func (f *fakePipeline) Close() error {
	f.closed = true
	return nil
}

type countingProgress struct {
	total    int
	desc     string
	added    int
	finished bool
}

func (p *countingProgress) Add(n int) error { p.added += n; return nil }
func (p *countingProgress) Finish() error   { p.finished = true; return nil }

func TestPredictSingle_DistilBert(t *testing.T) {
	p := &fakePipeline{labels: map[string]string{
		"Loved it": "POSITIVE",
		"Hated it": "NEGATIVE",
		"Hmm":      "NEUTRAL",
	}}
	e := NewEvaluator(DistilBert, p)

	tests := []struct {
		text string
		want Sentiment
	}{
		{"Loved it", Positive},
		{"Hated it", Negative},
		{"Hmm", Negative},
	}

	for _, tt := range tests {
		got, err := e.PredictSingle(context.Background(), tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.text)
	}

	assert.True(t, p.lastOpts.Truncation)
	assert.Equal(t, 512, p.lastOpts.MaxLength)
}

func TestPredictSingle_MultiBert(t *testing.T) {
	p := &fakePipeline{labels: map[string]string{
		"a": "2 stars",
		"b": "3 stars",
		"c": "5 stars",
		"d": "stars",
	}}
	e := NewEvaluator(MultiBert, p)
	ctx := context.Background()

	got, err := e.PredictSingle(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Negative, got)

	got, err = e.PredictSingle(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, Positive, got)

	got, err = e.PredictSingle(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, Positive, got)

	_, err = e.PredictSingle(ctx, "d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedLabel)
	assert.True(t, errors.HasCode(err, errors.CodeMLError))
}

func TestPredictSingle_PipelineErrorPropagates(t *testing.T) {
	boom := stderrors.New("connection refused")
	p := &fakePipeline{failOn: map[string]error{"x": boom}}
	e := NewEvaluator(DistilBert, p)

	_, err := e.PredictSingle(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.HasCode(err, errors.CodeMLError))
}

func TestPredictSingle_AppErrorKeepsCode(t *testing.T) {
	p := &fakePipeline{failOn: map[string]error{"x": errors.TimeoutError("inference request")}}
	e := NewEvaluator(DistilBert, p)

	_, err := e.PredictSingle(context.Background(), "x")
	assert.True(t, errors.HasCode(err, errors.CodeTimeout))
}

func TestPredictSeries_OrderAndLength(t *testing.T) {
	p := &fakePipeline{labels: map[string]string{
		"good": "POSITIVE",
		"bad":  "NEGATIVE",
	}}
	var bar *countingProgress
	e := NewEvaluator(DistilBert, p, WithProgress(func(total int, desc string) Progress {
		bar = &countingProgress{total: total, desc: desc}
		return bar
	}))

	texts := []string{"good", "bad", "bad", "good"}
	got, err := e.PredictSeries(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, []Sentiment{Positive, Negative, Negative, Positive}, got)
	for _, s := range got {
		assert.Contains(t, []Sentiment{Negative, Positive}, s)
	}

	require.NotNil(t, bar)
	assert.Equal(t, 4, bar.total)
	assert.Equal(t, "Predicting using DistilBert", bar.desc)
	assert.Equal(t, 4, bar.added)
	assert.True(t, bar.finished)
}

func TestPredictSeries_Empty(t *testing.T) {
	e := NewEvaluator(DistilBert, &fakePipeline{})

	got, err := e.PredictSeries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPredictSeries_StopsAtFirstError(t *testing.T) {
	boom := stderrors.New("boom")
	p := &fakePipeline{
		labels: map[string]string{"a": "POSITIVE", "c": "POSITIVE"},
		failOn: map[string]error{"b": boom},
	}
	e := NewEvaluator(DistilBert, p)

	got, err := e.PredictSeries(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, p.calls)
}

func TestPredictSeries_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePipeline{}
	e := NewEvaluator(DistilBert, p)

	_, err := e.PredictSeries(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestEvaluator_Cache(t *testing.T) {
	cache, err := NewLabelCache(100)
	require.NoError(t, err)
	defer cache.Close()

	p := &fakePipeline{labels: map[string]string{"Loved it": "POSITIVE"}}
	e := NewEvaluator(DistilBert, p, WithCache(cache))
	ctx := context.Background()

	_, err = e.PredictSingle(ctx, "Loved it")
	require.NoError(t, err)
	cache.Wait()

	got, err := e.PredictSingle(ctx, "Loved it")
	require.NoError(t, err)
	assert.Equal(t, Positive, got)
	assert.Equal(t, 1, p.calls)
}

func TestEvaluator_WithMaxLength(t *testing.T) {
	p := &fakePipeline{labels: map[string]string{"x": "POSITIVE"}}
	e := NewEvaluator(DistilBert, p, WithMaxLength(128))

	_, err := e.PredictSingle(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 128, p.lastOpts.MaxLength)
}

func TestOpen_Warmup(t *testing.T) {
	ctx := context.Background()

	e, err := Open(ctx, DistilBert, &fakePipeline{}, true)
	require.NoError(t, err)
	assert.Equal(t, "DistilBert", e.Name())
	assert.Equal(t, DistilBert.Model, e.Model())

	_, err = Open(ctx, DistilBert, &fakePipeline{readyErr: stderrors.New("model not loaded")}, true)
	assert.Error(t, err)

	_, err = Open(ctx, DistilBert, &fakePipeline{readyErr: stderrors.New("model not loaded")}, false)
	assert.NoError(t, err)
}

func TestEvaluator_WithMockPipeline(t *testing.T) {
	ctx := context.Background()
	mock := inference.NewMockPipeline()

	for _, v := range DefaultRegistry().Variants() {
		e := NewEvaluator(v, mock)
		got, err := e.PredictSeries(ctx, []string{"Loved it", "Hated it"})
		require.NoError(t, err, v.Name)
		assert.Equal(t, []Sentiment{Positive, Negative}, got, v.Name)
	}
}

func TestEvaluator_Close(t *testing.T) {
	p := &fakePipeline{}
	e := NewEvaluator(DistilBert, p)

	require.NoError(t, e.Close())
	assert.True(t, p.closed)
}
