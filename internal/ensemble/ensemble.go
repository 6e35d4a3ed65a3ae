// Package ensemble implements bootstrap aggregating (bagging) over a
// pluggable base learner, with out-of-bag error estimation.
package ensemble

import (
    "sort"

    "github.com/pkg/errors"
)

type Task int

const (
    Regression Task = iota
    Classification
)

var (
    ErrNoLearners     = errors.New("ensemble: no base learners")
    ErrSchemaMismatch = errors.New("ensemble: feature vector does not match training schema")
    ErrNoOOBCoverage  = errors.New("ensemble: no out-of-bag coverage")
)

// Learner fits a base model on one bootstrap sample. Fit must be a pure
// function of its input: Train calls it from multiple goroutines.
type Learner interface {
    Fit(X [][]float64, y []float64) (Predictor, error)
    Name() string
}

// Predictor is a fitted base model. Immutable once returned by Fit.
type Predictor interface {
    Predict(x []float64) float64
}

// ProbaPredictor is implemented by binary classifiers that can report a
// positive-class probability in addition to a hard label.
type ProbaPredictor interface {
    Predictor
    PredictProba(x []float64) float64
}

// Member pairs one fitted base model with the training-set indices that
// were never drawn into its bootstrap sample.
type Member struct {
    Model Predictor
    OOB   []int
}

type Ensemble struct {
    Task        Task
    NumFeatures int
    LearnerName string
    Members     []Member
}

// Predict aggregates all member predictions for x: arithmetic mean for
// regression, plurality vote for classification with ties broken toward
// the lowest label.
func (e *Ensemble) Predict(x []float64) (float64, error) {
    if len(e.Members) == 0 { return 0, ErrNoLearners }
    if len(x) != e.NumFeatures { return 0, errors.Wrapf(ErrSchemaMismatch, "got %d features, want %d", len(x), e.NumFeatures) }
    preds := make([]float64, len(e.Members))
    for i := range e.Members { preds[i] = e.Members[i].Model.Predict(x) }
    return e.aggregate(preds), nil
}

// PredictProba averages the members' positive-class probabilities. Every
// member model must implement ProbaPredictor.
func (e *Ensemble) PredictProba(x []float64) (float64, error) {
    if e.Task != Classification { return 0, errors.New("ensemble: PredictProba requires a classification ensemble") }
    if len(e.Members) == 0 { return 0, ErrNoLearners }
    if len(x) != e.NumFeatures { return 0, errors.Wrapf(ErrSchemaMismatch, "got %d features, want %d", len(x), e.NumFeatures) }
    sum := 0.0
    for i := range e.Members {
        pp, ok := e.Members[i].Model.(ProbaPredictor)
        if !ok { return 0, errors.Errorf("ensemble: member %d does not report probabilities", i) }
        sum += pp.PredictProba(x)
    }
    return sum / float64(len(e.Members)), nil
}

func (e *Ensemble) aggregate(preds []float64) float64 {
    if e.Task == Classification { return pluralityVote(preds) }
    sum := 0.0
    for _, p := range preds { sum += p }
    return sum / float64(len(preds))
}

// pluralityVote returns the most voted label. Ties go to the lowest label
// so the result is independent of member order.
func pluralityVote(preds []float64) float64 {
    votes := map[float64]int{}
    for _, p := range preds { votes[p]++ }
    labels := make([]float64, 0, len(votes))
    for l := range votes { labels = append(labels, l) }
    sort.Float64s(labels)
    best := labels[0]
    for _, l := range labels[1:] {
        if votes[l] > votes[best] { best = l }
    }
    return best
}
