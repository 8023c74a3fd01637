// Package model はモデル共通の学習状態とインターフェースを提供する
package model

import (
	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/metrics"
)

// PointClassifier はラベル付きの点で学習し、単一の点を分類するモデルのインターフェース
type PointClassifier interface {
	// Fit はモデルを訓練データで学習させる
	Fit(points []geom.LabeledPoint) error
	// Predict はクエリ点のラベルを予測する
	Predict(query geom.Point) (geom.Label, error)
}

// PredictAll は各クエリ点に Predict を適用する
func PredictAll(c PointClassifier, queries []geom.Point) ([]geom.Label, error) {
	out := make([]geom.Label, len(queries))
	for i, q := range queries {
		label, err := c.Predict(q)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Score はラベル付きの点に対する予測を評価する
func Score(c PointClassifier, points []geom.LabeledPoint) (metrics.EvaluationMetrics, error) {
	predictions, err := PredictAll(c, geom.Points(points))
	if err != nil {
		return metrics.EvaluationMetrics{}, err
	}
	return metrics.Evaluate(predictions, geom.Labels(points))
}

// BaseEstimator は各モデルに埋め込む学習状態。学習に使った点の数も保持する
type BaseEstimator struct {
	fitted   bool
	nSamples int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted はモデルを学習済み状態にする
func (e *BaseEstimator) SetFitted(nSamples int) {
	e.fitted = true
	e.nSamples = nSamples
}

// NSamples は学習に使った点の数を返す
func (e *BaseEstimator) NSamples() int {
	return e.nSamples
}

// Reset はモデルを未学習の状態に戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
	e.nSamples = 0
}
