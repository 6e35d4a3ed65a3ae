package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKNNNearestSingle(t *testing.T) {
	X := [][]float64{{0}, {10}, {20}}
	y := []float64{1, 2, 3}
	knn := NewKNN()
	knn.K = 1
	model, err := knn.Fit(X, y)
	require.NoError(t, err)
	require.Equal(t, 1.0, model.Predict([]float64{2}))
	require.Equal(t, 2.0, model.Predict([]float64{11}))
	require.Equal(t, 3.0, model.Predict([]float64{100}))
}

func TestKNNAllNeighboursIsGlobalMean(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{1, 2, 3, 6}
	knn := &KNN{K: 4}
	model, err := knn.Fit(X, y)
	require.NoError(t, err)
	require.InDelta(t, 3.0, model.Predict([]float64{1.5}), 1e-12)
}

func TestKNNCopiesTrainingData(t *testing.T) {
	X := [][]float64{{5}}
	y := []float64{7}
	model, err := (&KNN{K: 1}).Fit(X, y)
	require.NoError(t, err)
	X[0][0] = 1000
	y[0] = 1000
	require.Equal(t, 7.0, model.Predict([]float64{5}))
}

func TestMeanLearner(t *testing.T) {
	model, err := NewMean().Fit([][]float64{{1}, {2}}, []float64{10, 30})
	require.NoError(t, err)
	require.InDelta(t, 20.0, model.Predict([]float64{999}), 1e-12)

	_, err = NewMean().Fit(nil, nil)
	require.Error(t, err)
}
