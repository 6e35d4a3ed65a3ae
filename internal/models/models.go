// Package models provides base learners for the bagging trainer. Every
// learner implements ensemble.Learner and its fitted models implement
// ensemble.Predictor.
package models

import (
    "encoding/gob"

    "github.com/pkg/errors"
)

var errEmptySample = errors.New("models: empty training sample")

func init() {
    // fitted model types cross the gob boundary inside ensemble.Member
    gob.Register(&TreeModel{})
    gob.Register(&ClassTreeModel{})
    gob.Register(&KNNModel{})
    gob.Register(&MeanModel{})
}
