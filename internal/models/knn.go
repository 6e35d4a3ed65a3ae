package models

import (
    "math"
    "sort"

    "housebag/internal/ensemble"
)

// KNN predicts the mean target of the K nearest neighbours by euclidean
// distance. Mostly here to show the bagging trainer is learner-agnostic.
type KNN struct {
    K int
}

func NewKNN() *KNN { return &KNN{K: 5} }

func (k *KNN) Name() string { return "KNN" }

func (k *KNN) Fit(X [][]float64, y []float64) (ensemble.Predictor, error) {
    if len(X) == 0 { return nil, errEmptySample }
    neighbours := k.K
    if neighbours < 1 { neighbours = 1 }
    if neighbours > len(X) { neighbours = len(X) }
    Xc := make([][]float64, len(X))
    yc := make([]float64, len(y))
    for i := range X {
        row := make([]float64, len(X[i]))
        copy(row, X[i])
        Xc[i] = row
    }
    copy(yc, y)
    return &KNNModel{K: neighbours, X: Xc, Y: yc}, nil
}

// KNNModel is a fitted (memorized) nearest-neighbour model.
type KNNModel struct {
    K int
    X [][]float64
    Y []float64
}

func (m *KNNModel) Predict(x []float64) float64 {
    type neighbour struct {
        dist float64
        y    float64
    }
    ds := make([]neighbour, len(m.X))
    for i := range m.X {
        ds[i] = neighbour{dist: euclidean(m.X[i], x), y: m.Y[i]}
    }
    sort.Slice(ds, func(i, j int) bool { return ds[i].dist < ds[j].dist })
    sum := 0.0
    for i := 0; i < m.K; i++ { sum += ds[i].y }
    return sum / float64(m.K)
}

func euclidean(a, b []float64) float64 {
    s := 0.0
    for i := range a {
        d := a[i] - b[i]
        s += d * d
    }
    return math.Sqrt(s)
}
