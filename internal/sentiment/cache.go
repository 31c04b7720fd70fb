package sentiment

import (
	"sync"

	"github.com/dgraph-io/ristretto"

	"github.com/sentimentlab/sentiment-service/internal/inference"
	"github.com/sentimentlab/sentiment-service/internal/pkg/hash"
)

// CacheMetrics records cache activity.
type CacheMetrics interface {
	RecordCacheHit(model string)
	RecordCacheMiss(model string)
}

// LabelCache keeps raw pipeline predictions in memory, keyed by model and text.
type LabelCache struct {
	cache   *ristretto.Cache
	maxSize int64
	metrics CacheMetrics
	closing sync.Once
}

// NewLabelCache creates a cache holding up to maxSize predictions.
// It returns nil when maxSize is not positive; a nil cache never hits.
func NewLabelCache(maxSize int) (*LabelCache, error) {
	if maxSize <= 0 {
		return nil, nil
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(10 * maxSize),
		MaxCost:            int64(maxSize),
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &LabelCache{cache: c, maxSize: int64(maxSize)}, nil
}

// SetMetrics sets the metrics recorder for this cache.
func (c *LabelCache) SetMetrics(metrics CacheMetrics) {
	if c == nil {
		return
	}
	c.metrics = metrics
}

// Get returns the cached prediction for model and text.
func (c *LabelCache) Get(model, text string) (inference.Prediction, bool) {
	if c == nil {
		return inference.Prediction{}, false
	}

	v, ok := c.cache.Get(hash.PredictionKey(model, text))
	if ok {
		if c.metrics != nil {
			c.metrics.RecordCacheHit(model)
		}
		return v.(inference.Prediction), true
	}

	if c.metrics != nil {
		c.metrics.RecordCacheMiss(model)
	}
	return inference.Prediction{}, false
}

// Set stores a prediction. Admission is asynchronous; call Wait to flush.
func (c *LabelCache) Set(model, text string, pred inference.Prediction) {
	if c == nil {
		return
	}
	c.cache.Set(hash.PredictionKey(model, text), pred, 1)
}

// Wait blocks until pending writes are applied.
func (c *LabelCache) Wait() {
	if c == nil {
		return
	}
	c.cache.Wait()
}

// Stats returns cache statistics.
func (c *LabelCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	m := c.cache.Metrics
	return CacheStats{
		Hits:    m.Hits(),
		Misses:  m.Misses(),
		MaxSize: c.maxSize,
	}
}

// Close stops the cache's background goroutines. Safe to call more than once.
func (c *LabelCache) Close() {
	if c == nil {
		return
	}
	c.closing.Do(c.cache.Close)
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	MaxSize int64  `json:"max_size"`
}
