// Package naive_bayes は2次元の点に対するガウシアン・ナイーブベイズ分類器を提供する
package naive_bayes

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/metrics"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

// Result は学習データ自身に対する予測とその評価
type Result struct {
	Predictions []geom.Label              `json:"predictions"`
	Metrics     metrics.EvaluationMetrics `json:"metrics"`
}

// classStats はクラスごとの母平均・母分散
type classStats struct {
	count        int
	meanX, meanY float64
	varX, varY   float64
}

// GaussianNB はx座標とy座標を独立な正規分布とみなすナイーブベイズ分類器
//
// 尤度 = N(x; μx, σx²)·N(y; μy, σy²)·count_c/n
type GaussianNB struct {
	model.BaseEstimator

	varianceFloor float64
	logger        log.Logger

	stats [2]classStats
}

// Option はGaussianNBの設定オプション
type Option func(*GaussianNB)

// WithVarianceFloor は分散の下限を設定する。0 の場合、分散が0のクラスはエラーになる
func WithVarianceFloor(v float64) Option {
	return func(nb *GaussianNB) {
		nb.varianceFloor = v
	}
}

// WithLogger はロガーを設定
func WithLogger(logger log.Logger) Option {
	return func(nb *GaussianNB) {
		nb.logger = logger
	}
}

// NewGaussianNB は新しいGaussianNBを作成
func NewGaussianNB(opts ...Option) *GaussianNB {
	nb := &GaussianNB{}
	for _, opt := range opts {
		opt(nb)
	}
	if nb.logger == nil {
		nb.logger = log.GetLoggerWithName("naive_bayes")
	}
	return nb
}

// FitPredict は points で学習し、同じ点を分類して評価する
func FitPredict(points []geom.LabeledPoint, opts ...Option) (Result, error) {
	nb := NewGaussianNB(opts...)
	if err := nb.Fit(points); err != nil {
		return Result{}, err
	}

	predictions := make([]geom.Label, len(points))
	for i, p := range points {
		predictions[i] = nb.predict(p.Point())
	}
	m, err := metrics.Evaluate(predictions, geom.Labels(points))
	if err != nil {
		return Result{}, err
	}

	nb.logger.Info("naive bayes evaluated",
		log.ModelNameKey, "GaussianNB",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, len(points),
		log.AccuracyKey, m.Accuracy,
		log.PrecisionKey, m.Precision,
		log.RecallKey, m.Recall,
		log.F1Key, m.F1,
	)
	return Result{Predictions: predictions, Metrics: m}, nil
}

// Fit はクラスごとの平均と分散を計算する
func (nb *GaussianNB) Fit(points []geom.LabeledPoint) error {
	if nb.varianceFloor < 0 || math.IsNaN(nb.varianceFloor) {
		return errors.NewValidationError("variance_floor", "must be non-negative", nb.varianceFloor)
	}
	if len(points) == 0 {
		return errors.NewEmptyTrainingSetError("GaussianNB.Fit")
	}

	var xs, ys [2][]float64
	for _, p := range points {
		if !p.Label.Valid() {
			return errors.NewValidationError("label", "must be 0 or 1", int(p.Label))
		}
		xs[p.Label] = append(xs[p.Label], p.X)
		ys[p.Label] = append(ys[p.Label], p.Y)
	}

	nb.Reset()
	var stats [2]classStats
	for c := range stats {
		if len(xs[c]) == 0 {
			// サンプルのないクラスの尤度は常に0
			continue
		}
		s := classStats{count: len(xs[c])}
		s.meanX, s.varX = popMeanVariance(xs[c])
		s.meanY, s.varY = popMeanVariance(ys[c])

		var err error
		if s.varX, err = nb.floor(s.varX, "x", c); err != nil {
			return err
		}
		if s.varY, err = nb.floor(s.varY, "y", c); err != nil {
			return err
		}
		stats[c] = s
	}

	nb.stats = stats
	nb.SetFitted(len(points))

	nb.logger.Debug("naive bayes fitted",
		log.ModelNameKey, "GaussianNB",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(points),
		log.Class0CountKey, stats[0].count,
		log.Class1CountKey, stats[1].count,
	)
	return nil
}

// popMeanVariance は定数列の分散を丸め誤差なしで0にする
func popMeanVariance(v []float64) (mean, variance float64) {
	if floats.Min(v) == floats.Max(v) {
		return v[0], 0
	}
	return stat.PopMeanVariance(v, nil)
}

func (nb *GaussianNB) floor(variance float64, feature string, class int) (float64, error) {
	if variance >= nb.varianceFloor && variance > 0 {
		return variance, nil
	}
	if nb.varianceFloor > 0 {
		return nb.varianceFloor, nil
	}
	err := errors.NewDegenerateVarianceError("GaussianNB.Fit", feature, class)
	nb.logger.Debug("zero variance in class",
		log.ErrorKey, err,
		log.ModelNameKey, "GaussianNB",
		log.LabelKey, class,
	)
	return 0, err
}

// likelihoods はクラス0とクラス1の (正規化していない) 事後確率を返す
func (nb *GaussianNB) likelihoods(p geom.Point) [2]float64 {
	var out [2]float64
	n := float64(nb.NSamples())
	for c, s := range nb.stats {
		if s.count == 0 {
			continue
		}
		px := distuv.Normal{Mu: s.meanX, Sigma: math.Sqrt(s.varX)}.Prob(p.X)
		py := distuv.Normal{Mu: s.meanY, Sigma: math.Sqrt(s.varY)}.Prob(p.Y)
		out[c] = px * py * float64(s.count) / n
	}
	return out
}

// p0 > p1 のときだけ0。等しい場合は1になる
func (nb *GaussianNB) predict(p geom.Point) geom.Label {
	l := nb.likelihoods(p)
	if l[geom.Negative] > l[geom.Positive] {
		return geom.Negative
	}
	return geom.Positive
}

// Predict は点のラベルを予測する
func (nb *GaussianNB) Predict(query geom.Point) (geom.Label, error) {
	if !nb.IsFitted() {
		return 0, errors.NewNotFittedError("GaussianNB", "Predict")
	}
	return nb.predict(query), nil
}

// PredictProba はクラス0とクラス1の事後確率を返す。
// 両方の尤度がアンダーフローした場合は 0.5 ずつとする
func (nb *GaussianNB) PredictProba(query geom.Point) ([2]float64, error) {
	if !nb.IsFitted() {
		return [2]float64{}, errors.NewNotFittedError("GaussianNB", "PredictProba")
	}
	l := nb.likelihoods(query)
	total := l[0] + l[1]
	if total == 0 {
		return [2]float64{0.5, 0.5}, nil
	}
	return [2]float64{l[0] / total, l[1] / total}, nil
}

// Score は予測を評価する
func (nb *GaussianNB) Score(points []geom.LabeledPoint) (metrics.EvaluationMetrics, error) {
	return model.Score(nb, points)
}

// Classes は学習データに含まれていたラベルを返す
func (nb *GaussianNB) Classes() []geom.Label {
	var out []geom.Label
	for c, s := range nb.stats {
		if s.count > 0 {
			out = append(out, geom.Label(c))
		}
	}
	return out
}

// Theta はクラスごとの平均 (μx, μy) を返す
func (nb *GaussianNB) Theta() [2]geom.Point {
	var out [2]geom.Point
	for c, s := range nb.stats {
		out[c] = geom.Point{X: s.meanX, Y: s.meanY}
	}
	return out
}

// Var はクラスごとの分散 (σx², σy²) を返す
func (nb *GaussianNB) Var() [2]geom.Point {
	var out [2]geom.Point
	for c, s := range nb.stats {
		out[c] = geom.Point{X: s.varX, Y: s.varY}
	}
	return out
}

// ClassCount はクラスごとの学習サンプル数を返す
func (nb *GaussianNB) ClassCount() [2]int {
	return [2]int{nb.stats[0].count, nb.stats[1].count}
}
