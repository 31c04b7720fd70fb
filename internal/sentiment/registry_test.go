package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"DistilBert", "MultiBert"}, r.Names())

	v, err := r.Get("DistilBert")
	require.NoError(t, err)
	assert.Equal(t, "distilbert-base-uncased-finetuned-sst-2-english", v.Model)

	v, err = r.Get("MultiBert")
	require.NoError(t, err)
	assert.Equal(t, "nlptown/bert-base-multilingual-uncased-sentiment", v.Model)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Get("distilbert")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "DistilBert, MultiBert", appErr.Details["available"])
}

func TestRegistry_Select(t *testing.T) {
	r := DefaultRegistry()

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := r.Select([]string{"MultiBert"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "MultiBert", some[0].Name)

	_, err = r.Select([]string{"MultiBert", "Roberta"})
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	custom := DistilBert
	custom.Model = "custom/model"

	r := NewRegistry(DistilBert, MultiBert, custom)
	assert.Equal(t, []string{"DistilBert", "MultiBert"}, r.Names())

	v, err := r.Get("DistilBert")
	require.NoError(t, err)
	assert.Equal(t, "custom/model", v.Model)
}

func TestRegistry_VariantsIsCopy(t *testing.T) {
	r := DefaultRegistry()
	vs := r.Variants()
	vs[0].Name = "changed"

	assert.Equal(t, "DistilBert", r.Names()[0])
}
