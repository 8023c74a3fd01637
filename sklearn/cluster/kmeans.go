// Package cluster は2次元の点に対するk-meansクラスタリングを提供する
package cluster

import (
	"math"
	"math/rand"
	"time"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

const (
	// DefaultTol はセントロイドの移動量に対する収束判定の閾値
	DefaultTol = 0.01
	// DefaultMaxIter は反復回数の上限
	DefaultMaxIter = 300
)

// Result はk-meansの実行結果
type Result struct {
	Centroids  []geom.Centroid `json:"centroids"`
	Clusters   []geom.Cluster  `json:"clusters"`
	Labels     []int           `json:"labels"`     // 各点が属するクラスタのインデックス
	Iterations int             `json:"iterations"` // 実行された Assign → Update の回数
	Converged  bool            `json:"converged"`
	Inertia    float64         `json:"inertia"` // クラスタ内平方和誤差
}

// KMeans はk-meansクラスタリング
//
// 状態遷移: Init → Assign → Update → (収束 ? 終了 : Assign)
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数 k
	tol         float64 // 収束判定の許容誤差
	maxIter     int     // 最大イテレーション数
	randomState int64   // 乱数シード（負の場合は時刻から生成）

	// 学習結果
	result Result

	rng    *rand.Rand
	logger log.Logger
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// NewKMeans は新しいKMeansを作成
func NewKMeans(k int, options ...KMeansOption) *KMeans {
	km := &KMeans{
		nClusters:   k,
		tol:         DefaultTol,
		maxIter:     DefaultMaxIter,
		randomState: -1,
	}

	for _, opt := range options {
		opt(km)
	}

	if km.rng == nil {
		if km.randomState >= 0 {
			km.rng = rand.New(rand.NewSource(km.randomState))
		} else {
			km.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if km.logger == nil {
		km.logger = log.GetLoggerWithName("cluster")
	}

	return km
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) KMeansOption {
	return func(km *KMeans) {
		km.tol = tol
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.randomState = seed
	}
}

// WithRand は初期セントロイドの選択に使う乱数生成器を設定
func WithRand(rng *rand.Rand) KMeansOption {
	return func(km *KMeans) {
		km.rng = rng
	}
}

// WithLogger はロガーを設定
func WithLogger(logger log.Logger) KMeansOption {
	return func(km *KMeans) {
		km.logger = logger
	}
}

// FitKMeans は点列を k 個のクラスタに分ける
func FitKMeans(points []geom.Point, k int, options ...KMeansOption) (Result, error) {
	km := NewKMeans(k, options...)
	if err := km.Fit(points); err != nil {
		return Result{}, err
	}
	return km.Result(), nil
}

func (km *KMeans) validateParams() error {
	if km.nClusters < 1 {
		return errors.NewValidationError("k", "must be at least 1", km.nClusters)
	}
	if km.tol < 0 || math.IsNaN(km.tol) {
		return errors.NewValidationError("tol", "must be non-negative", km.tol)
	}
	if km.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", km.maxIter)
	}
	return nil
}

// Fit はクラスタリングを実行する
// 異なる点が k 個未満の場合は InsufficientUniquePointsError を返す
func (km *KMeans) Fit(points []geom.Point) error {
	if err := km.validateParams(); err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.NewInsufficientDataError("KMeans.Fit", km.nClusters, 0)
	}

	km.Reset()

	centroids, err := km.initializeCentroids(points)
	if err != nil {
		km.logger.Debug("k-means initialization failed",
			log.ErrorKey, err,
			log.KKey, km.nClusters,
			log.SamplesKey, len(points),
		)
		return err
	}

	var (
		clusters  []geom.Cluster
		labels    []int
		converged bool
		iter      int
	)
	for iter < km.maxIter && !converged {
		iter++
		clusters, labels = Assign(points, centroids)

		newCentroids, empty := UpdateCentroids(clusters, centroids)
		for _, idx := range empty {
			errors.Warn(errors.NewEmptyClusterWarning(idx, iter))
		}

		converged = Converged(centroids, newCentroids, km.tol)
		centroids = newCentroids
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("KMeans", iter, ""))
	}

	km.result = Result{
		Centroids:  centroids,
		Clusters:   clusters,
		Labels:     labels,
		Iterations: iter,
		Converged:  converged,
		Inertia:    inertia(points, labels, centroids),
	}
	km.SetFitted(len(points))

	km.logger.Info("k-means finished",
		log.ModelNameKey, "KMeans",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(points),
		log.KKey, km.nClusters,
		log.IterationKey, iter,
		log.ConvergedKey, converged,
		log.InertiaKey, km.result.Inertia,
	)
	return nil
}

// initializeCentroids は重複を除いた点から k 個を一様ランダムに選ぶ
func (km *KMeans) initializeCentroids(points []geom.Point) ([]geom.Centroid, error) {
	unique := geom.Unique(points)
	if len(unique) < km.nClusters {
		return nil, errors.NewInsufficientUniquePointsError("KMeans.Fit", km.nClusters, len(unique))
	}

	perm := km.rng.Perm(len(unique))
	centroids := make([]geom.Centroid, km.nClusters)
	for i := range centroids {
		centroids[i] = unique[perm[i]]
	}
	return centroids, nil
}

// Assign は各点を最も近いセントロイドのクラスタに割り当てる
// 距離が等しい場合はインデックスの小さいセントロイドを選ぶ
func Assign(points []geom.Point, centroids []geom.Centroid) ([]geom.Cluster, []int) {
	clusters := make([]geom.Cluster, len(centroids))
	for i := range clusters {
		clusters[i] = geom.Cluster{}
	}
	labels := make([]int, len(points))
	if len(centroids) == 0 {
		return clusters, labels
	}

	for i, p := range points {
		nearest := nearestCentroid(p, centroids)
		clusters[nearest] = append(clusters[nearest], p)
		labels[i] = nearest
	}
	return clusters, labels
}

func nearestCentroid(p geom.Point, centroids []geom.Centroid) int {
	closest := 0
	minDistance := geom.Distance(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := geom.Distance(p, centroids[i]); d < minDistance {
			minDistance = d
			closest = i
		}
	}
	return closest
}

// UpdateCentroids は各クラスタの平均を新しいセントロイドとする
// 空のクラスタは previous のセントロイドを保持し、そのインデックスを empty に返す
func UpdateCentroids(clusters []geom.Cluster, previous []geom.Centroid) (centroids []geom.Centroid, empty []int) {
	centroids = make([]geom.Centroid, len(clusters))
	for i, c := range clusters {
		mean, ok := geom.Mean(c)
		if !ok {
			centroids[i] = previous[i]
			empty = append(empty, i)
			continue
		}
		centroids[i] = mean
	}
	return centroids, empty
}

// Converged は全てのセントロイドの移動量が tol 以下かどうかを返す
func Converged(old, updated []geom.Centroid, tol float64) bool {
	for i := range old {
		if geom.Distance(old[i], updated[i]) > tol {
			return false
		}
	}
	return true
}

func inertia(points []geom.Point, labels []int, centroids []geom.Centroid) float64 {
	var sum float64
	for i, p := range points {
		d := geom.Distance(p, centroids[labels[i]])
		sum += d * d
	}
	return sum
}

// Result は直近の Fit の結果を返す
func (km *KMeans) Result() Result {
	return km.result
}

// Predict は点に最も近いセントロイドのインデックスを返す
func (km *KMeans) Predict(p geom.Point) (int, error) {
	if !km.IsFitted() {
		return 0, errors.NewNotFittedError("KMeans", "Predict")
	}
	return nearestCentroid(p, km.result.Centroids), nil
}

// NClusters はクラスタ数を返す
func (km *KMeans) NClusters() int {
	return km.nClusters
}
