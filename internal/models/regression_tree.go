package models

import (
    "math"
    "math/rand"

    "housebag/internal/ensemble"
)

type TreeNode struct {
    Feature   int
    Threshold float64
    Left      *TreeNode
    Right     *TreeNode
    IsLeaf    bool
    Value     float64
}

// RegressionTree grows binary trees by variance reduction. MaxDepth <= 0
// grows an unpruned tree. MaxFeatures > 0 restricts each split to a random
// feature subset, which turns a bagged ensemble of these into a random
// forest.
type RegressionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
}

func NewRegressionTree() *RegressionTree {
    return &RegressionTree{MaxDepth: 0, MinSamplesSplit: 5, MaxThresholdsPerFe: 32}
}

func (t *RegressionTree) Name() string { return "RegressionTree" }

func (t *RegressionTree) Fit(X [][]float64, y []float64) (ensemble.Predictor, error) {
    if len(X) == 0 { return nil, errEmptySample }
    rng := rand.New(rand.NewSource(sampleSeed(t.Seed, y)))
    idx := make([]int, len(X))
    for i := range idx { idx[i] = i }
    b := &treeBuilder{
        X: X, y: y, rng: rng,
        maxDepth:      t.MaxDepth,
        minSplit:      t.MinSamplesSplit,
        maxThresholds: t.MaxThresholdsPerFe,
        maxFeatures:   t.MaxFeatures,
    }
    return &TreeModel{Root: b.build(idx, 0)}, nil
}

// TreeModel is a fitted regression tree.
type TreeModel struct {
    Root *TreeNode
}

func (m *TreeModel) Predict(x []float64) float64 {
    n := m.Root
    if n == nil { return 0 }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
        if n == nil { return 0 }
    }
    return n.Value
}

type treeBuilder struct {
    X             [][]float64
    y             []float64
    rng           *rand.Rand
    maxDepth      int
    minSplit      int
    maxThresholds int
    maxFeatures   int
}

func (b *treeBuilder) build(idx []int, depth int) *TreeNode {
    node := &TreeNode{}
    if len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
        node.IsLeaf = true
        node.Value = meanTarget(b.y, idx)
        return node
    }
    if sumSquares(b.y, idx) == 0 {
        node.IsLeaf = true
        node.Value = meanTarget(b.y, idx)
        return node
    }

    bestFeature := -1
    bestThr := 0.0
    bestScore := math.MaxFloat64
    var leftBest, rightBest []int

    numFeatures := len(b.X[0])
    for _, f := range pickFeatures(b.rng, numFeatures, b.maxFeatures) {
        for _, thr := range candidateThresholds(b.rng, b.X, idx, f, b.maxThresholds) {
            lIdx, rIdx := splitIdx(b.X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            score := sumSquares(b.y, lIdx) + sumSquares(b.y, rIdx)
            if score < bestScore {
                bestScore = score
                bestFeature = f
                bestThr = thr
                leftBest = lIdx
                rightBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        node.IsLeaf = true
        node.Value = meanTarget(b.y, idx)
        return node
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = b.build(leftBest, depth+1)
    node.Right = b.build(rightBest, depth+1)
    return node
}

func meanTarget(y []float64, idx []int) float64 {
    sum := 0.0
    for _, i := range idx { sum += y[i] }
    return sum / float64(len(idx))
}

// sumSquares is the within-node sum of squared deviations from the mean.
func sumSquares(y []float64, idx []int) float64 {
    m := meanTarget(y, idx)
    ss := 0.0
    for _, i := range idx {
        d := y[i] - m
        ss += d * d
    }
    return ss
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if X[i][f] <= thr { l = append(l, i) } else { r = append(r, i) }
    }
    return l, r
}

func candidateThresholds(rng *rand.Rand, X [][]float64, idx []int, f int, maxC int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx { values[j] = X[i][f] }
    rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
    m := len(values)
    if maxC > 0 && maxC < m { m = maxC }
    return values[:m]
}

func pickFeatures(rng *rand.Rand, numFeatures, maxFeatures int) []int {
    idx := make([]int, numFeatures)
    for i := range idx { idx[i] = i }
    if maxFeatures <= 0 || maxFeatures >= numFeatures { return idx }
    rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
    return idx[:maxFeatures]
}

// sampleSeed folds the sample's targets into the learner seed so that
// each bootstrap sample grows a differently randomized tree while two
// fits on identical data stay identical.
func sampleSeed(seed int64, y []float64) int64 {
    h := seed
    limit := len(y)
    if limit > 32 { limit = 32 }
    for i := 0; i < limit; i++ {
        h = h*31 + int64(math.Float64bits(y[i])>>17)
    }
    return h
}
