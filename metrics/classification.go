// Package metrics は分類・回帰の評価指標を提供する
package metrics

import (
	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

// EvaluationMetrics は二値分類の評価結果。全ての値は [0, 1] に収まる
type EvaluationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Confusion は陽性クラスを 1 とした混同行列の各セル
type Confusion struct {
	TruePositives  int `json:"tp"`
	FalsePositives int `json:"fp"`
	FalseNegatives int `json:"fn"`
	TrueNegatives  int `json:"tn"`
}

// Total は集計したサンプル数を返す
func (c Confusion) Total() int {
	return c.TruePositives + c.FalsePositives + c.FalseNegatives + c.TrueNegatives
}

// ConfusionMatrix は予測と正解ラベルから混同行列を作る
func ConfusionMatrix(predictions, labels []geom.Label) (Confusion, error) {
	if len(predictions) != len(labels) {
		return Confusion{}, errors.NewDimensionError("ConfusionMatrix", len(labels), len(predictions))
	}

	var c Confusion
	for i, predicted := range predictions {
		actual := labels[i]
		if !predicted.Valid() {
			return Confusion{}, errors.NewValidationError("predictions", "label must be 0 or 1", int(predicted))
		}
		if !actual.Valid() {
			return Confusion{}, errors.NewValidationError("labels", "label must be 0 or 1", int(actual))
		}

		switch {
		case predicted == geom.Positive && actual == geom.Positive:
			c.TruePositives++
		case predicted == geom.Positive && actual == geom.Negative:
			c.FalsePositives++
		case predicted == geom.Negative && actual == geom.Positive:
			c.FalseNegatives++
		default:
			c.TrueNegatives++
		}
	}
	return c, nil
}

// Evaluate は accuracy / precision / recall / F1 を計算する
// 分母がゼロになる指標は 0 とし、UndefinedMetricWarning を発生させる
// 入力が空の場合は全てゼロの指標を返す
func Evaluate(predictions, labels []geom.Label) (EvaluationMetrics, error) {
	c, err := ConfusionMatrix(predictions, labels)
	if err != nil {
		return EvaluationMetrics{}, err
	}
	return c.Metrics(), nil
}

// Metrics は混同行列から評価指標を導出する
func (c Confusion) Metrics() EvaluationMetrics {
	n := c.Total()
	if n == 0 {
		return EvaluationMetrics{}
	}

	m := EvaluationMetrics{
		Accuracy: float64(c.TruePositives+c.TrueNegatives) / float64(n),
	}

	if predicted := c.TruePositives + c.FalsePositives; predicted > 0 {
		m.Precision = float64(c.TruePositives) / float64(predicted)
	} else {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positive samples", 0))
	}

	if actual := c.TruePositives + c.FalseNegatives; actual > 0 {
		m.Recall = float64(c.TruePositives) / float64(actual)
	} else {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no actual positive samples", 0))
	}

	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
