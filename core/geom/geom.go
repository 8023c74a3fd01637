// Package geom は2次元の点とその距離を扱う基本型を提供します。
// 全てのアルゴリズムはこのパッケージの値型を入力として受け取ります。
package geom

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Point はラベルなしの2次元の点（回帰・k-means用）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label は二値分類のラベル。0 または 1 のみ有効
type Label int

const (
	// Negative は陰性クラス
	Negative Label = 0
	// Positive は陽性クラス
	Positive Label = 1
)

// Valid はラベルが 0 または 1 であるかを返す
func (l Label) Valid() bool {
	return l == Negative || l == Positive
}

// LabeledPoint はラベル付きの2次元の点（分類器用）
type LabeledPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label Label   `json:"label"`
}

// Point はラベルを除いた座標を返す
func (p LabeledPoint) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Centroid はクラスタの代表点。生成したk-meansの実行が所有する
type Centroid = Point

// Cluster は一つのセントロイドに割り当てられた点の列。反復ごとに作り直される
type Cluster []Point

// Distance は2点間のユークリッド距離を返す
func Distance(a, b Point) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}

// Mean は点の成分ごとの平均を返す。空の場合は ok=false
func Mean(points []Point) (mean Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	xs, ys := Coords(points)
	n := float64(len(points))
	return Point{X: floats.Sum(xs) / n, Y: floats.Sum(ys) / n}, true
}

// Coords は点列をx座標とy座標のスライスに分解する
func Coords(points []Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// Unique は重複を除いた点を最初に現れた順で返す
func Unique(points []Point) []Point {
	seen := make(map[Point]struct{}, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Points はラベル付きの点からラベルを取り除く
func Points(labeled []LabeledPoint) []Point {
	out := make([]Point, len(labeled))
	for i, p := range labeled {
		out[i] = p.Point()
	}
	return out
}

// Labels はラベル付きの点からラベルだけを取り出す
func Labels(labeled []LabeledPoint) []Label {
	out := make([]Label, len(labeled))
	for i, p := range labeled {
		out[i] = p.Label
	}
	return out
}

// ToDense は点列を n×2 の行列 [x y] に変換する
func ToDense(points []Point) *mat.Dense {
	if len(points) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, 2*len(points))
	for _, p := range points {
		data = append(data, p.X, p.Y)
	}
	return mat.NewDense(len(points), 2, data)
}
