package models

import (
    "math"
    "math/rand"

    "housebag/internal/ensemble"
)

// ClassificationTree grows binary trees by gini impurity. Labels are
// small non-negative integers carried as float64.
type ClassificationTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
}

func NewClassificationTree() *ClassificationTree {
    return &ClassificationTree{MaxDepth: 0, MinSamplesSplit: 5, MaxThresholdsPerFe: 32}
}

func (t *ClassificationTree) Name() string { return "ClassificationTree" }

func (t *ClassificationTree) Fit(X [][]float64, y []float64) (ensemble.Predictor, error) {
    if len(X) == 0 { return nil, errEmptySample }
    rng := rand.New(rand.NewSource(sampleSeed(t.Seed, y)))
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    b := &classTreeBuilder{
        X: X, y: y, rng: rng,
        maxDepth:      t.MaxDepth,
        minSplit:      t.MinSamplesSplit,
        maxThresholds: t.MaxThresholdsPerFe,
        maxFeatures:   t.MaxFeatures,
    }
    return &ClassTreeModel{Root: b.build(idx, 0)}, nil
}

type ClassTreeNode struct {
    Feature   int
    Threshold float64
    Left      *ClassTreeNode
    Right     *ClassTreeNode
    IsLeaf    bool
    Label     float64
    Positive  float64 // fraction of label 1 in the leaf, for binary proba
}

// ClassTreeModel is a fitted classification tree.
type ClassTreeModel struct {
    Root *ClassTreeNode
}

func (m *ClassTreeModel) Predict(x []float64) float64 {
    leaf := m.leaf(x)
    if leaf == nil { return 0 }
    return leaf.Label
}

func (m *ClassTreeModel) PredictProba(x []float64) float64 {
    leaf := m.leaf(x)
    if leaf == nil { return 0.5 }
    return leaf.Positive
}

func (m *ClassTreeModel) leaf(x []float64) *ClassTreeNode {
    n := m.Root
    if n == nil { return nil }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
        if n == nil { return nil }
    }
    return n
}

type classTreeBuilder struct {
    X             [][]float64
    y             []float64
    rng           *rand.Rand
    maxDepth      int
    minSplit      int
    maxThresholds int
    maxFeatures   int
}

func (b *classTreeBuilder) build(idx []int, depth int) *ClassTreeNode {
    node := &ClassTreeNode{}
    counts := labelCounts(b.y, idx)
    if len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) || len(counts) == 1 {
        return b.leafFrom(node, idx, counts)
    }

    bestFeature := -1
    bestThr := 0.0
    bestImp := math.MaxFloat64
    var leftBest, rightBest []int

    numFeatures := len(b.X[0])
    for _, f := range pickFeatures(b.rng, numFeatures, b.maxFeatures) {
        for _, thr := range candidateThresholds(b.rng, b.X, idx, f, b.maxThresholds) {
            lIdx, rIdx := splitIdx(b.X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            imp := weightedGini(b.y, lIdx, rIdx)
            if imp < bestImp {
                bestImp = imp
                bestFeature = f
                bestThr = thr
                leftBest = lIdx
                rightBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        return b.leafFrom(node, idx, counts)
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = b.build(leftBest, depth+1)
    node.Right = b.build(rightBest, depth+1)
    return node
}

func (b *classTreeBuilder) leafFrom(node *ClassTreeNode, idx []int, counts map[float64]int) *ClassTreeNode {
    node.IsLeaf = true
    node.Label = majorityLabel(counts)
    node.Positive = float64(counts[1]) / float64(len(idx))
    return node
}

func labelCounts(y []float64, idx []int) map[float64]int {
    counts := map[float64]int{}
    for _, i := range idx { counts[y[i]]++ }
    return counts
}

// majorityLabel breaks count ties toward the lowest label.
func majorityLabel(counts map[float64]int) float64 {
    best := math.MaxFloat64
    bestCount := -1
    for l, c := range counts {
        if c > bestCount || (c == bestCount && l < best) {
            best = l
            bestCount = c
        }
    }
    return best
}

func weightedGini(y []float64, lIdx, rIdx []int) float64 {
    g := func(ids []int) float64 {
        if len(ids) == 0 { return 0 }
        counts := labelCounts(y, ids)
        imp := 1.0
        for _, c := range counts {
            p := float64(c) / float64(len(ids))
            imp -= p * p
        }
        return imp
    }
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl + wr
    return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}
