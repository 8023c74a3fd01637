// Package linear は2次元の点に対する最小二乗法の単回帰を提供する
package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/core/model"
	"github.com/YuminosukeSato/mlvlab/metrics"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
)

// Result は回帰直線 y = Slope*x + Intercept と当てはまりの指標
type Result struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	MSE       float64 `json:"mse"`
}

// FitLine は点列に回帰直線を当てはめ、R² と MSE を計算する
//
// 使用例:
//
//	res, err := linear.FitLine([]geom.Point{{0, 1}, {1, 3}, {2, 5}})
//	// res.Slope == 2, res.Intercept == 1
func FitLine(points []geom.Point) (Result, error) {
	lr := NewLinearRegression()
	if err := lr.Fit(points); err != nil {
		return Result{}, err
	}

	r2, err := lr.Score(points)
	if err != nil {
		return Result{}, err
	}

	mse, err := lr.MSE(points)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Slope:     lr.slope,
		Intercept: lr.intercept,
		R2:        r2,
		MSE:       mse,
	}, nil
}

// LinearRegression は単回帰モデル
type LinearRegression struct {
	model.BaseEstimator
	slope     float64
	intercept float64
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit は最小二乗法で傾きと切片を求める
//
//	m = (nΣxy − ΣxΣy) / (nΣx² − (Σx)²)
//	c = (Σy − mΣx) / n
func (lr *LinearRegression) Fit(points []geom.Point) error {
	n := len(points)
	if n < 2 {
		return errors.NewInsufficientDataError("LinearRegression.Fit", 2, n)
	}

	xs, ys := geom.Coords(points)
	nf := float64(n)
	sumX := floats.Sum(xs)
	sumY := floats.Sum(ys)
	sumXY := floats.Dot(xs, ys)
	sumXX := floats.Dot(xs, xs)

	// 全ての x が同じ値だと傾きが定義できない。
	// 2.7 のような値では denom が丸め誤差で0にならないので、値そのものを比べる
	denom := nf*sumXX - sumX*sumX
	if floats.Min(xs) == floats.Max(xs) || denom == 0 {
		return errors.NewDegenerateVarianceError("LinearRegression.Fit", "x", -1)
	}

	lr.slope = (nf*sumXY - sumX*sumY) / denom
	lr.intercept = (sumY - lr.slope*sumX) / nf
	lr.SetFitted(n)

	return nil
}

// Predict は x に対する予測値を返す
func (lr *LinearRegression) Predict(x float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	return lr.slope*x + lr.intercept, nil
}

func (lr *LinearRegression) predictAll(points []geom.Point) (yTrue, yPred []float64) {
	yTrue = make([]float64, len(points))
	yPred = make([]float64, len(points))
	for i, p := range points {
		yTrue[i] = p.Y
		yPred[i] = lr.slope*p.X + lr.intercept
	}
	return yTrue, yPred
}

// Score は決定係数（R²）を計算する
// y が全て同じ値の場合は DegenerateVarianceError を返す
func (lr *LinearRegression) Score(points []geom.Point) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}
	yTrue, yPred := lr.predictAll(points)
	r2, err := metrics.R2Score(yTrue, yPred)
	if err != nil {
		var degErr *errors.DegenerateVarianceError
		if errors.As(err, &degErr) {
			return 0, errors.NewDegenerateVarianceError("LinearRegression.Score", "y", -1)
		}
		return 0, err
	}
	return r2, nil
}

// MSE は残差の二乗平均を計算する
func (lr *LinearRegression) MSE(points []geom.Point) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "MSE")
	}
	yTrue, yPred := lr.predictAll(points)
	return metrics.MSE(yTrue, yPred)
}

// Slope は学習された傾きを返す
func (lr *LinearRegression) Slope() float64 {
	return lr.slope
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// Line は x の範囲 [xMin, xMax] の両端における回帰直線上の2点を返す
// 描画側が直線を引くために使う
func (lr *LinearRegression) Line(points []geom.Point) ([2]geom.Point, error) {
	if !lr.IsFitted() {
		return [2]geom.Point{}, errors.NewNotFittedError("LinearRegression", "Line")
	}
	if len(points) == 0 {
		return [2]geom.Point{}, errors.NewInsufficientDataError("LinearRegression.Line", 1, 0)
	}
	xs, _ := geom.Coords(points)
	lo, hi := floats.Min(xs), floats.Max(xs)
	return [2]geom.Point{
		{X: lo, Y: lr.slope*lo + lr.intercept},
		{X: hi, Y: lr.slope*hi + lr.intercept},
	}, nil
}

// Coefficients は [切片, 傾き] を列ベクトルとして返す
func (lr *LinearRegression) Coefficients() *mat.VecDense {
	return mat.NewVecDense(2, []float64{lr.intercept, lr.slope})
}

// Residuals は各点の残差 y − ŷ を、計画行列 [1 x] と係数の積から求める
func (lr *LinearRegression) Residuals(points []geom.Point) (*mat.VecDense, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Residuals")
	}
	if len(points) == 0 {
		return &mat.VecDense{}, nil
	}

	design := mat.NewDense(len(points), 2, nil)
	y := mat.NewVecDense(len(points), nil)
	for i, p := range points {
		design.Set(i, 0, 1)
		design.Set(i, 1, p.X)
		y.SetVec(i, p.Y)
	}

	var fitted mat.VecDense
	fitted.MulVec(design, lr.Coefficients())

	residuals := mat.NewVecDense(len(points), nil)
	residuals.SubVec(y, &fitted)
	return residuals, nil
}
