package evaluation

import (
	"fmt"
)

// ConfusionMatrix counts binary outcomes with 1 as the positive class.
type ConfusionMatrix struct {
	TruePositive  int `json:"tp"`
	FalsePositive int `json:"fp"`
	TrueNegative  int `json:"tn"`
	FalseNegative int `json:"fn"`
}

// Confusion builds the confusion matrix for labels and preds. Any non-zero
// value counts as positive.
func Confusion(labels, preds []int) (ConfusionMatrix, error) {
	if len(labels) != len(preds) {
		return ConfusionMatrix{}, fmt.Errorf("length mismatch: %d labels, %d predictions", len(labels), len(preds))
	}

	var m ConfusionMatrix
	for i := range labels {
		actual, predicted := labels[i] != 0, preds[i] != 0
		switch {
		case actual && predicted:
			m.TruePositive++
		case !actual && predicted:
			m.FalsePositive++
		case !actual && !predicted:
			m.TrueNegative++
		default:
			m.FalseNegative++
		}
	}
	return m, nil
}

// Total returns the number of samples.
func (m ConfusionMatrix) Total() int {
	return m.TruePositive + m.FalsePositive + m.TrueNegative + m.FalseNegative
}

// Accuracy is the share of correct predictions. Zero samples yield 0.
func (m ConfusionMatrix) Accuracy() float64 {
	return ratio(m.TruePositive+m.TrueNegative, m.Total())
}

// Precision is tp/(tp+fp), or 0 when nothing was predicted positive.
func (m ConfusionMatrix) Precision() float64 {
	return ratio(m.TruePositive, m.TruePositive+m.FalsePositive)
}

// Recall is tp/(tp+fn), or 0 when there are no positive labels.
func (m ConfusionMatrix) Recall() float64 {
	return ratio(m.TruePositive, m.TruePositive+m.FalseNegative)
}

// F1 is 2tp/(2tp+fp+fn), or 0 when the denominator is 0.
func (m ConfusionMatrix) F1() float64 {
	return ratio(2*m.TruePositive, 2*m.TruePositive+m.FalsePositive+m.FalseNegative)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Score computes all classification metrics for labels and preds.
func Score(labels, preds []int) (ClassificationMetrics, error) {
	m, err := Confusion(labels, preds)
	if err != nil {
		return ClassificationMetrics{}, err
	}

	return ClassificationMetrics{
		Accuracy:  m.Accuracy(),
		Precision: m.Precision(),
		Recall:    m.Recall(),
		F1:        m.F1(),
		Confusion: m,
	}, nil
}
