package evaluation

import (
	"time"
)

// ClassificationMetrics holds binary classification scores.
type ClassificationMetrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Confusion ConfusionMatrix `json:"confusion"`
}

// Result is the outcome of benchmarking one model.
type Result struct {
	Model     string                `json:"model"`
	Metrics   ClassificationMetrics `json:"metrics"`
	Speed     time.Duration         `json:"speed"`
	Samples   int                   `json:"samples"`
	RunID     string                `json:"run_id"`
	Timestamp time.Time             `json:"timestamp"`
}

// Named metric keys, in report order.
const (
	MetricAccuracy  = "Accuracy"
	MetricPrecision = "Precision"
	MetricRecall    = "Recall"
	MetricF1        = "F1-score"
	MetricSpeed     = "Speed"
)

// MetricNames lists metric keys in report order.
var MetricNames = []string{MetricAccuracy, MetricPrecision, MetricRecall, MetricF1, MetricSpeed}

// Values returns each named metric, speed in seconds.
func (r Result) Values() map[string]float64 {
	return map[string]float64{
		MetricAccuracy:  r.Metrics.Accuracy,
		MetricPrecision: r.Metrics.Precision,
		MetricRecall:    r.Metrics.Recall,
		MetricF1:        r.Metrics.F1,
		MetricSpeed:     r.Speed.Seconds(),
	}
}

// DataPoint is one historical metric value.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	RunID     string    `json:"run_id"`
}
