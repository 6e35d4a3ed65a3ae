package main

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.uber.org/zap"

	"housebag/internal/data"
	"housebag/internal/ensemble"
	"housebag/internal/features"
	"housebag/internal/models"
	"housebag/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerate the synthetic dataset")
    n := flag.Int("n", 50000, "Number of synthetic listings")
    noise := flag.Float64("noise", 0.12, "Relative gaussian noise on the synthetic prices")
    out := flag.String("out", "data/synthetic.csv", "Output CSV path")
    learnerName := flag.String("learner", "tree", "Base learner: tree|knn|mean")
    rounds := flag.Int("rounds", 100, "Number of bootstrap rounds (B)")
    seed := flag.Int64("seed", 42, "Root seed for resampling and the data shuffle")
    workers := flag.Int("workers", 0, "Parallel fits (0 = NumCPU)")
    maxDepth := flag.Int("max_depth", 0, "Max tree depth (0 = unpruned)")
    minSamples := flag.Int("min_samples", 5, "Min samples to split a tree node")
    maxThresholds := flag.Int("max_thresholds", 32, "Max candidate thresholds per feature")
    maxFeatures := flag.Int("max_features", 0, "Random feature subset per split (0 = all)")
    k := flag.Int("k", 5, "Neighbours for the knn learner")
    modelOut := flag.String("model_out", "", "Model output path (default models/bag_<learner>.gob)")
    curve := flag.Bool("curve", true, "Generate the OOB-error-vs-rounds curve (PNG and CSV)")
    curvePoints := flag.Int("curve_points", 10, "Number of checkpoints on the curve")
    curveImg := flag.String("curve_out_img", "cmd/api/static/oob_curve.png", "Curve PNG")
    curveCsv := flag.String("curve_out_csv", "data/oob_curve.csv", "Curve CSV")
    flag.Parse()

    if *regen {
        logger.Info("Generating synthetic dataset", zap.Int("n", *n), zap.String("out", *out))
        if err := data.GenerateSyntheticHouses(*n, *noise, *seed, *out); err != nil {
            logger.Fatal("Failed to generate dataset", zap.Error(err))
        }
    }

    houses, err := data.LoadHouses(*out)
    if err != nil { logger.Fatal("Failed to load dataset", zap.Error(err)) }

    X := make([][]float64, 0, len(houses))
    y := make([]float64, 0, len(houses))
    for _, h := range houses {
        v, _ := features.Vectorize(h)
        X = append(X, v)
        y = append(y, h.Price)
    }

    rng := rand.New(rand.NewSource(*seed))
    perm := rng.Perm(len(X))
    shX := make([][]float64, len(X))
    shY := make([]float64, len(y))
    for i, j := range perm { shX[i] = X[j]; shY[i] = y[j] }
    X, y = shX, shY

    split := int(0.8 * float64(len(X)))
    Xtrain, ytrain := X[:split], y[:split]
    Xtest, ytest := X[split:], y[split:]
    logger.Info("Dataset split", zap.Int("train", len(Xtrain)), zap.Int("test", len(Xtest)))

    lrn := constructLearner(*learnerName, *maxDepth, *minSamples, *maxThresholds, *maxFeatures, *k, *seed)

    cfg := ensemble.Config{Rounds: *rounds, Seed: *seed, Workers: *workers, Task: ensemble.Regression}
    ens, err := ensemble.Train(context.Background(), cfg, Xtrain, ytrain, lrn)
    if err != nil { logger.Fatal("Training failed", zap.Error(err)) }

    predTest, err := predictAll(ens, Xtest)
    if err != nil { logger.Fatal("Holdout prediction failed", zap.Error(err)) }

    single, err := lrn.Fit(Xtrain, ytrain)
    if err != nil { logger.Fatal("Single learner fit failed", zap.Error(err)) }
    singleTest := make([]float64, len(Xtest))
    for i := range Xtest { singleTest[i] = single.Predict(Xtest[i]) }

    oobMSE, err := ens.OOBError(Xtrain, ytrain)
    if err != nil { logger.Fatal("OOB error estimate failed", zap.Error(err)) }

    logger.Info("Holdout metrics",
        zap.String("learner", ens.LearnerName),
        zap.Int("rounds", *rounds),
        zap.Float64("rmse", rmse(ytest, predTest)),
        zap.Float64("mae", mae(ytest, predTest)),
        zap.Float64("r2", stat.RSquaredFrom(predTest, ytest, nil)),
        zap.Float64("single_rmse", rmse(ytest, singleTest)),
        zap.Float64("oob_rmse", math.Sqrt(oobMSE)),
    )

    path := *modelOut
    if path == "" { path = filepath.Join("models", "bag_"+*learnerName+".gob") }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { logger.Fatal("mkdir models", zap.Error(err)) }
    mf, err := os.Create(path)
    if err != nil { logger.Fatal("create model file", zap.Error(err)) }
    defer mf.Close()
    enc := gob.NewEncoder(mf)
    if err := enc.Encode(ens); err != nil { logger.Fatal("encode model", zap.Error(err)) }
    logger.Info("Model saved", zap.String("path", path))

    if *curve {
        checkpoints := curveCheckpoints(*rounds, *curvePoints)
        oobCurve, err := ens.OOBCurve(Xtrain, ytrain, checkpoints)
        if err != nil { logger.Fatal("OOB curve failed", zap.Error(err)) }
        testCurve := make([]float64, len(checkpoints))
        for i, c := range checkpoints {
            prefix := &ensemble.Ensemble{Task: ens.Task, NumFeatures: ens.NumFeatures, LearnerName: ens.LearnerName, Members: ens.Members[:c]}
            preds, err := predictAll(prefix, Xtest)
            if err != nil { logger.Fatal("Curve prediction failed", zap.Error(err)) }
            testCurve[i] = mse(ytest, preds)
        }
        if err := writeCurveCSV(*curveCsv, checkpoints, oobCurve, testCurve); err != nil {
            logger.Warn("Failed to save curve CSV", zap.Error(err))
        }
        if err := plotCurvePNG(*curveImg, checkpoints, oobCurve, testCurve); err != nil {
            logger.Warn("Failed to save curve PNG", zap.Error(err))
        } else {
            logger.Info("OOB curve generated", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
        }
    }
}

func constructLearner(name string, maxDepth, minSamples, maxThresholds, maxFeatures, k int, seed int64) ensemble.Learner {
    switch name {
    case "knn":
        knn := models.NewKNN()
        knn.K = k
        return knn
    case "mean":
        return models.NewMean()
    default:
        t := models.NewRegressionTree()
        t.MaxDepth = maxDepth
        t.MinSamplesSplit = minSamples
        t.MaxThresholdsPerFe = maxThresholds
        t.MaxFeatures = maxFeatures
        t.Seed = seed
        return t
    }
}

func predictAll(e *ensemble.Ensemble, X [][]float64) ([]float64, error) {
    out := make([]float64, len(X))
    for i := range X {
        p, err := e.Predict(X[i])
        if err != nil { return nil, err }
        out[i] = p
    }
    return out, nil
}

func mse(y, p []float64) float64 {
    if len(y) == 0 { return 0 }
    s := 0.0
    for i := range y { d := y[i] - p[i]; s += d * d }
    return s / float64(len(y))
}

func rmse(y, p []float64) float64 { return math.Sqrt(mse(y, p)) }

func mae(y, p []float64) float64 {
    if len(y) == 0 { return 0 }
    s := 0.0
    for i := range y { s += math.Abs(y[i] - p[i]) }
    return s / float64(len(y))
}

// curveCheckpoints picks log-spaced round counts up to rounds, always
// including 1 and rounds.
func curveCheckpoints(rounds, points int) []int {
    if rounds < 1 { return nil }
    if points <= 1 { points = 2 }
    out := make([]int, 0, points)
    last := 0
    for i := 0; i < points; i++ {
        f := math.Pow(float64(rounds), float64(i)/float64(points-1))
        c := int(math.Round(f))
        if c <= last { c = last + 1 }
        if c > rounds { c = rounds }
        if c != last { out = append(out, c); last = c }
    }
    if out[len(out)-1] != rounds { out = append(out, rounds) }
    return out
}

func writeCurveCSV(path string, checkpoints []int, oobMSE, testMSE []float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"rounds", "oob_rmse", "test_rmse"}); err != nil { return err }
    for i := range checkpoints {
        rec := []string{
            fmt.Sprintf("%d", checkpoints[i]),
            fmt.Sprintf("%.2f", math.Sqrt(oobMSE[i])),
            fmt.Sprintf("%.2f", math.Sqrt(testMSE[i])),
        }
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func plotCurvePNG(path string, checkpoints []int, oobMSE, testMSE []float64) error {
    p := plot.New()
    p.Title.Text = "OOB Error vs Rounds"
    p.X.Label.Text = "Bootstrap rounds"
    p.Y.Label.Text = "RMSE"

    toXY := func(xs []int, ys []float64) plotter.XYs {
        pts := make(plotter.XYs, len(xs))
        for i := range xs { pts[i].X = float64(xs[i]); pts[i].Y = math.Sqrt(ys[i]) }
        return pts
    }
    oobPts := toXY(checkpoints, oobMSE)
    testPts := toXY(checkpoints, testMSE)
    if err := plotutil.AddLinePoints(p, "OOB", oobPts, "Test", testPts); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
