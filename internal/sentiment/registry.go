package sentiment

import (
	"strings"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

// Variant describes one pretrained classifier.
type Variant struct {
	Name        string     `json:"name"`
	Model       string     `json:"model"`
	Description string     `json:"description"`
	Labels      []string   `json:"labels"`
	Normalize   Normalizer `json:"-"`
}

// DistilBert is the binary English classifier.
var DistilBert = Variant{
	Name:        "DistilBert",
	Model:       "distilbert-base-uncased-finetuned-sst-2-english",
	Description: "Binary English sentiment (SST-2)",
	Labels:      []string{"NEGATIVE", "POSITIVE"},
	Normalize:   NormalizeBinary,
}

// MultiBert is the multilingual star-rating classifier.
var MultiBert = Variant{
	Name:        "MultiBert",
	Model:       "nlptown/bert-base-multilingual-uncased-sentiment",
	Description: "Multilingual product review rating (1-5 stars)",
	Labels:      []string{"1 star", "2 stars", "3 stars", "4 stars", "5 stars"},
	Normalize:   NormalizeStars,
}

// Registry is an ordered set of variants.
type Registry struct {
	variants []Variant
	byName   map[string]int
}

// NewRegistry creates a registry. Later variants replace earlier ones with the same name.
func NewRegistry(variants ...Variant) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, v := range variants {
		if i, ok := r.byName[v.Name]; ok {
			r.variants[i] = v
			continue
		}
		r.byName[v.Name] = len(r.variants)
		r.variants = append(r.variants, v)
	}
	return r
}

// DefaultRegistry returns DistilBert and MultiBert, in that order.
func DefaultRegistry() *Registry {
	return NewRegistry(DistilBert, MultiBert)
}

// Get returns the variant with the given name. Names are case-sensitive.
func (r *Registry) Get(name string) (Variant, error) {
	i, ok := r.byName[name]
	if !ok {
		return Variant{}, errors.NotFoundError("model "+name).
			WithDetail("available", strings.Join(r.Names(), ", "))
	}
	return r.variants[i], nil
}

// Variants returns all variants in registration order.
func (r *Registry) Variants() []Variant {
	out := make([]Variant, len(r.variants))
	copy(out, r.variants)
	return out
}

// Names returns variant names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.variants))
	for i, v := range r.variants {
		names[i] = v.Name
	}
	return names
}

// Select returns the named variants in the order given. An empty list selects all.
func (r *Registry) Select(names []string) ([]Variant, error) {
	if len(names) == 0 {
		return r.Variants(), nil
	}

	out := make([]Variant, 0, len(names))
	for _, n := range names {
		v, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
