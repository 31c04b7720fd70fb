package evaluation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// History records benchmark results.
type History interface {
	Record(ctx context.Context, r Result) error
	Close() error
}

// RedisHistory stores each model/metric series in a sorted set scored by
// run time. Members are "<run id>|<value>" so equal values from different
// runs stay distinct.
type RedisHistory struct {
	client *redis.Client
	prefix string
	ttl    time.Duration // 0 = keep forever
}

// NewRedisHistory connects to url and verifies the connection.
func NewRedisHistory(url string) (*RedisHistory, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisHistory{
		client: client,
		prefix: "sentiment:benchmark:",
	}, nil
}

// SetTTL drops data points older than ttl on every write. 0 disables trimming.
func (h *RedisHistory) SetTTL(ttl time.Duration) {
	h.ttl = ttl
}

func (h *RedisHistory) key(model, metric string) string {
	return h.prefix + model + ":" + metric
}

// Record saves every metric of r in one pipeline.
func (h *RedisHistory) Record(ctx context.Context, r Result) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	score := float64(ts.Unix())

	pipe := h.client.Pipeline()
	for name, value := range r.Values() {
		key := h.key(r.Model, name)
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  score,
			Member: formatMember(r.RunID, value),
		})
		if h.ttl > 0 {
			pipe.ZRemRangeByScore(ctx, key, "-inf", trimBound(time.Now(), h.ttl))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving benchmark result: %w", err)
	}
	return nil
}

// Load returns data points for model and metric recorded at or after since.
func (h *RedisHistory) Load(ctx context.Context, model, metric string, since time.Time) ([]DataPoint, error) {
	results, err := h.client.ZRangeByScoreWithScores(ctx, h.key(model, metric), &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	points := make([]DataPoint, 0, len(results))
	for _, z := range results {
		member, _ := z.Member.(string)
		runID, value, ok := parseMember(member)
		if !ok {
			continue
		}

		points = append(points, DataPoint{
			Timestamp: time.Unix(int64(z.Score), 0),
			Value:     value,
			RunID:     runID,
		})
	}

	return points, nil
}

// Close closes the Redis connection.
func (h *RedisHistory) Close() error {
	return h.client.Close()
}

// formatMember encodes one data point as a sorted-set member.
func formatMember(runID string, value float64) string {
	return runID + "|" + strconv.FormatFloat(value, 'f', -1, 64)
}

// parseMember decodes formatMember output. Run ids never contain '|', so the
// last separator splits id from value.
func parseMember(member string) (runID string, value float64, ok bool) {
	i := strings.LastIndexByte(member, '|')
	if i < 0 {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(member[i+1:], 64)
	if err != nil {
		return "", 0, false
	}
	return member[:i], value, true
}

// trimBound is the exclusive upper score for ZREMRANGEBYSCORE: points scored
// exactly at now-ttl are kept.
func trimBound(now time.Time, ttl time.Duration) string {
	return fmt.Sprintf("(%d", now.Add(-ttl).Unix())
}
