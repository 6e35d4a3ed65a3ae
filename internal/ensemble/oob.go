package ensemble

import (
    "github.com/pkg/errors"
    "gonum.org/v1/gonum/stat"
)

// OOBError estimates generalization error on the training set: each
// example is scored only by the members for which it was out-of-bag.
// Regression returns mean squared error, classification the
// misclassification rate. Examples never left out of any sample are
// skipped; if no example is covered the estimate is undefined and
// ErrNoOOBCoverage is returned.
func (e *Ensemble) OOBError(X [][]float64, y []float64) (float64, error) {
    return e.oobError(X, y, len(e.Members))
}

// OOBCurve reports the OOB error of the prefix ensemble at each
// checkpoint, for tracking how the estimate evolves with the number of
// rounds. Checkpoints must be in [1, len(Members)].
func (e *Ensemble) OOBCurve(X [][]float64, y []float64, checkpoints []int) ([]float64, error) {
    out := make([]float64, len(checkpoints))
    for i, k := range checkpoints {
        if k < 1 || k > len(e.Members) {
            return nil, errors.Errorf("ensemble: checkpoint %d outside [1, %d]", k, len(e.Members))
        }
        v, err := e.oobError(X, y, k)
        if err != nil { return nil, errors.Wrapf(err, "checkpoint %d", k) }
        out[i] = v
    }
    return out, nil
}

func (e *Ensemble) oobError(X [][]float64, y []float64, rounds int) (float64, error) {
    if rounds == 0 { return 0, ErrNoOOBCoverage }
    if len(X) != len(y) { return 0, errors.Errorf("ensemble: %d feature rows but %d targets", len(X), len(y)) }

    leftOut := make([][]int, len(X))
    for m := 0; m < rounds; m++ {
        for _, idx := range e.Members[m].OOB {
            if idx < 0 || idx >= len(X) { return 0, errors.Errorf("ensemble: out-of-bag index %d outside training set of %d", idx, len(X)) }
            leftOut[idx] = append(leftOut[idx], m)
        }
    }

    var losses []float64
    for i, members := range leftOut {
        if len(members) == 0 { continue }
        preds := make([]float64, len(members))
        for j, m := range members { preds[j] = e.Members[m].Model.Predict(X[i]) }
        agg := e.aggregate(preds)
        if e.Task == Classification {
            if agg != y[i] { losses = append(losses, 1) } else { losses = append(losses, 0) }
        } else {
            d := agg - y[i]
            losses = append(losses, d*d)
        }
    }
    if len(losses) == 0 { return 0, ErrNoOOBCoverage }
    return stat.Mean(losses, nil), nil
}
