package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassificationTreeSeparableData(t *testing.T) {
	X := make([][]float64, 30)
	y := make([]float64, 30)
	for i := range X {
		X[i] = []float64{float64(i) - 15}
		if X[i][0] < 0 {
			y[i] = 0
		} else {
			y[i] = 1
		}
	}
	tree := NewClassificationTree()
	tree.MinSamplesSplit = 2
	model, err := tree.Fit(X, y)
	require.NoError(t, err)
	for i := range X {
		require.Equal(t, y[i], model.Predict(X[i]), "x=%v", X[i])
	}
}

func TestClassificationTreeProba(t *testing.T) {
	// one leaf (unsplittable), 3 of 4 labels positive
	X := [][]float64{{1}, {1}, {1}, {1}}
	y := []float64{1, 1, 1, 0}
	tree := NewClassificationTree()
	model, err := tree.Fit(X, y)
	require.NoError(t, err)
	ctm, ok := model.(*ClassTreeModel)
	require.True(t, ok)
	require.InDelta(t, 0.75, ctm.PredictProba([]float64{1}), 1e-12)
	require.Equal(t, 1.0, ctm.Predict([]float64{1}))
}

func TestMajorityLabelTieBreaksToLowest(t *testing.T) {
	require.Equal(t, 0.0, majorityLabel(map[float64]int{0: 2, 1: 2}))
	require.Equal(t, 1.0, majorityLabel(map[float64]int{0: 1, 1: 2, 2: 2}))
	require.Equal(t, 2.0, majorityLabel(map[float64]int{0: 1, 1: 1, 2: 3}))
}
