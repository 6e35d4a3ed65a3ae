package ensemble

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// meanLearner is a deterministic base learner: the fitted model predicts
// the mean target of its bootstrap sample.
type meanLearner struct{}

func (meanLearner) Name() string { return "mean" }

func (meanLearner) Fit(X [][]float64, y []float64) (Predictor, error) {
	s := 0.0
	for _, v := range y {
		s += v
	}
	return fixedModel(s / float64(len(y))), nil
}

type fixedModel float64

func (m fixedModel) Predict(x []float64) float64 { return float64(m) }

type failingLearner struct{}

func (failingLearner) Name() string { return "failing" }

func (failingLearner) Fit(X [][]float64, y []float64) (Predictor, error) {
	return nil, errors.New("degenerate sample")
}

func smallTrainingSet(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i), float64(i % 3)}
		y[i] = float64(10 * i)
	}
	return X, y
}

func TestTrainBuildsAllRounds(t *testing.T) {
	X, y := smallTrainingSet(10)
	ens, err := Train(context.Background(), Config{Rounds: 25, Seed: 1}, X, y, meanLearner{})
	require.NoError(t, err)
	require.Len(t, ens.Members, 25)
	require.Equal(t, 2, ens.NumFeatures)
	require.Equal(t, "mean", ens.LearnerName)
	for _, m := range ens.Members {
		require.NotNil(t, m.Model)
		for j, idx := range m.OOB {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, len(X))
			if j > 0 {
				require.Greater(t, idx, m.OOB[j-1])
			}
		}
	}
}

func TestBootstrapSampleProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	sample, oob := bootstrapSample(rng, 50)
	require.Len(t, sample, 50)
	drawn := map[int]bool{}
	for _, idx := range sample {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 50)
		drawn[idx] = true
	}
	for _, idx := range oob {
		require.False(t, drawn[idx], "index %d is both drawn and out-of-bag", idx)
	}
	require.Equal(t, 50, len(drawn)+len(oob))

	rng2 := rand.New(rand.NewSource(99))
	sample2, oob2 := bootstrapSample(rng2, 50)
	require.Equal(t, sample, sample2)
	require.Equal(t, oob, oob2)
}

func TestTrainDeterministicAcrossRuns(t *testing.T) {
	X, y := smallTrainingSet(40)
	cfg := Config{Rounds: 30, Seed: 7}
	a, err := Train(context.Background(), cfg, X, y, meanLearner{})
	require.NoError(t, err)
	b, err := Train(context.Background(), cfg, X, y, meanLearner{})
	require.NoError(t, err)
	for i := range a.Members {
		require.Equal(t, a.Members[i].OOB, b.Members[i].OOB, "round %d", i)
		require.Equal(t, a.Members[i].Model, b.Members[i].Model, "round %d", i)
	}
}

func TestTrainParallelMatchesSerial(t *testing.T) {
	X, y := smallTrainingSet(40)
	serial, err := Train(context.Background(), Config{Rounds: 30, Seed: 7, Workers: 1}, X, y, meanLearner{})
	require.NoError(t, err)
	parallel, err := Train(context.Background(), Config{Rounds: 30, Seed: 7, Workers: 8}, X, y, meanLearner{})
	require.NoError(t, err)
	for i := range serial.Members {
		require.Equal(t, serial.Members[i].OOB, parallel.Members[i].OOB, "round %d", i)
		require.Equal(t, serial.Members[i].Model, parallel.Members[i].Model, "round %d", i)
	}
}

func TestTrainRoundsZero(t *testing.T) {
	X, y := smallTrainingSet(5)
	ens, err := Train(context.Background(), Config{Rounds: 0, Seed: 1}, X, y, meanLearner{})
	require.NoError(t, err)
	require.Empty(t, ens.Members)
	_, err = ens.Predict(X[0])
	require.ErrorIs(t, err, ErrNoLearners)
}

func TestTrainConfigErrors(t *testing.T) {
	X, y := smallTrainingSet(5)

	_, err := Train(context.Background(), Config{Rounds: -1}, X, y, meanLearner{})
	require.Error(t, err)

	_, err = Train(context.Background(), Config{Rounds: 3}, X, y, nil)
	require.Error(t, err)

	_, err = Train(context.Background(), Config{Rounds: 3}, nil, nil, meanLearner{})
	require.Error(t, err)

	_, err = Train(context.Background(), Config{Rounds: 3}, X, y[:3], meanLearner{})
	require.Error(t, err)

	ragged := [][]float64{{1, 2}, {3}}
	_, err = Train(context.Background(), Config{Rounds: 3}, ragged, []float64{1, 2}, meanLearner{})
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTrainFitFailurePropagates(t *testing.T) {
	X, y := smallTrainingSet(5)
	ens, err := Train(context.Background(), Config{Rounds: 3, Seed: 1}, X, y, failingLearner{})
	require.Nil(t, ens)
	require.Error(t, err)
	require.Contains(t, err.Error(), "round")
	require.Contains(t, err.Error(), "degenerate sample")
}

func TestTrainHonoursCancellation(t *testing.T) {
	X, y := smallTrainingSet(20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Train(ctx, Config{Rounds: 50, Seed: 1, Workers: 1}, X, y, meanLearner{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPredictSchemaMismatch(t *testing.T) {
	X, y := smallTrainingSet(10)
	ens, err := Train(context.Background(), Config{Rounds: 5, Seed: 1}, X, y, meanLearner{})
	require.NoError(t, err)
	_, err = ens.Predict([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRegressionAggregationIsOrderIndependent(t *testing.T) {
	ens := &Ensemble{Task: Regression, NumFeatures: 1, Members: []Member{
		{Model: fixedModel(1)}, {Model: fixedModel(2)}, {Model: fixedModel(3)}, {Model: fixedModel(10)},
	}}
	want, err := ens.Predict([]float64{0})
	require.NoError(t, err)
	require.InDelta(t, 4.0, want, 1e-12)

	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(ens.Members), func(i, j int) {
			ens.Members[i], ens.Members[j] = ens.Members[j], ens.Members[i]
		})
		got, err := ens.Predict([]float64{0})
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-12)
	}
}

func TestPluralityVoteTieBreaksToLowestLabel(t *testing.T) {
	ens := &Ensemble{Task: Classification, NumFeatures: 1, Members: []Member{
		{Model: fixedModel(2)}, {Model: fixedModel(0)}, {Model: fixedModel(2)}, {Model: fixedModel(0)},
	}}
	got, err := ens.Predict([]float64{0})
	require.NoError(t, err)
	require.Equal(t, 0.0, got)

	ens.Members = append(ens.Members, Member{Model: fixedModel(2)})
	got, err = ens.Predict([]float64{0})
	require.NoError(t, err)
	require.Equal(t, 2.0, got)
}

type probaModel struct {
	label float64
	proba float64
}

func (m probaModel) Predict(x []float64) float64      { return m.label }
func (m probaModel) PredictProba(x []float64) float64 { return m.proba }

func TestPredictProba(t *testing.T) {
	ens := &Ensemble{Task: Classification, NumFeatures: 1, Members: []Member{
		{Model: probaModel{label: 1, proba: 0.9}},
		{Model: probaModel{label: 0, proba: 0.3}},
	}}
	p, err := ens.PredictProba([]float64{0})
	require.NoError(t, err)
	require.InDelta(t, 0.6, p, 1e-12)

	ens.Members = append(ens.Members, Member{Model: fixedModel(1)})
	_, err = ens.PredictProba([]float64{0})
	require.Error(t, err)

	reg := &Ensemble{Task: Regression, NumFeatures: 1, Members: []Member{{Model: probaModel{}}}}
	_, err = reg.PredictProba([]float64{0})
	require.Error(t, err)
}
