package models

import "housebag/internal/ensemble"

// Mean predicts the mean target of its training sample regardless of the
// input. Baseline learner.
type Mean struct{}

func NewMean() *Mean { return &Mean{} }

func (m *Mean) Name() string { return "Mean" }

func (m *Mean) Fit(X [][]float64, y []float64) (ensemble.Predictor, error) {
    if len(y) == 0 { return nil, errEmptySample }
    sum := 0.0
    for _, v := range y { sum += v }
    return &MeanModel{Value: sum / float64(len(y))}, nil
}

type MeanModel struct {
    Value float64
}

func (m *MeanModel) Predict(x []float64) float64 { return m.Value }
