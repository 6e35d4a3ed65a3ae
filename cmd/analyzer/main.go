package main

import (
    "encoding/csv"
    "encoding/gob"
    "flag"
    "fmt"
    "math"
    "math/rand"
    "os"
    "path/filepath"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "go.uber.org/zap"

    "housebag/internal/data"
    "housebag/internal/ensemble"
    "housebag/internal/features"
    _ "housebag/internal/models"
    "housebag/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    modelPath := flag.String("model", "models/bag_tree.gob", "Trained ensemble file")
    dataPath := flag.String("data", "data/synthetic.csv", "Training CSV the model was fit on")
    points := flag.Int("points", 8, "Checkpoints on the OOB curve")
    seed := flag.Int64("seed", 7, "Seed for the permutation shuffles")
    outImg := flag.String("out_img", "cmd/api/static/oob_curve.png", "OOB curve PNG")
    outCsv := flag.String("out_csv", "data/oob_curve.csv", "OOB curve CSV")
    impImg := flag.String("imp_img", "cmd/api/static/importance.png", "Feature importance PNG")
    impCsv := flag.String("imp_csv", "data/importance.csv", "Feature importance CSV")
    flag.Parse()

    f, err := os.Open(*modelPath)
    if err != nil { logger.Fatal("Failed to open model", zap.Error(err)) }
    var ens ensemble.Ensemble
    if err := gob.NewDecoder(f).Decode(&ens); err != nil {
        f.Close()
        logger.Fatal("Failed to decode model", zap.Error(err))
    }
    f.Close()
    if len(ens.Members) == 0 { logger.Fatal("Model has no members") }

    houses, err := data.LoadHouses(*dataPath)
    if err != nil { logger.Fatal("Failed to load dataset", zap.Error(err)) }
    X := make([][]float64, 0, len(houses))
    y := make([]float64, 0, len(houses))
    var names []string
    for _, h := range houses {
        v, fn := features.Vectorize(h)
        names = fn
        X = append(X, v)
        y = append(y, h.Price)
    }

    checkpoints := makeCheckpoints(len(ens.Members), *points)
    curve, err := ens.OOBCurve(X, y, checkpoints)
    if err != nil { logger.Fatal("OOB curve failed", zap.Error(err)) }
    for i := range checkpoints {
        fmt.Printf("rounds=%d | oob_rmse=%.2f\n", checkpoints[i], math.Sqrt(curve[i]))
    }
    if err := writeCurve(*outCsv, checkpoints, curve); err != nil { logger.Warn("Failed to save curve CSV", zap.Error(err)) }
    if err := plotCurve(*outImg, checkpoints, curve); err != nil { logger.Warn("Failed to save curve PNG", zap.Error(err)) }

    imp, err := permutationImportance(&ens, X, y, *seed)
    if err != nil { logger.Fatal("Importance failed", zap.Error(err)) }
    if err := writeImportance(*impCsv, names, imp); err != nil { logger.Warn("Failed to save importance CSV", zap.Error(err)) }
    if err := plotImportance(*impImg, names, imp); err != nil { logger.Warn("Failed to save importance PNG", zap.Error(err)) }
    logger.Info("Analysis done", zap.String("curve", *outCsv), zap.String("importance", *impCsv))
}

// permutationImportance reports, per feature, the increase in OOB RMSE
// after shuffling that feature's column across the training set.
func permutationImportance(ens *ensemble.Ensemble, X [][]float64, y []float64, seed int64) ([]float64, error) {
    baseMSE, err := ens.OOBError(X, y)
    if err != nil { return nil, err }
    base := math.Sqrt(baseMSE)
    numFeatures := ens.NumFeatures
    imp := make([]float64, numFeatures)
    for fIdx := 0; fIdx < numFeatures; fIdx++ {
        rng := rand.New(rand.NewSource(seed + int64(fIdx)))
        perm := rng.Perm(len(X))
        Xp := make([][]float64, len(X))
        for i := range X {
            row := make([]float64, len(X[i]))
            copy(row, X[i])
            row[fIdx] = X[perm[i]][fIdx]
            Xp[i] = row
        }
        permMSE, err := ens.OOBError(Xp, y)
        if err != nil { return nil, err }
        imp[fIdx] = math.Sqrt(permMSE) - base
        if imp[fIdx] < 0 { imp[fIdx] = 0 }
    }
    return imp, nil
}

func makeCheckpoints(rounds, points int) []int {
    if points <= 1 { points = 2 }
    out := make([]int, 0, points)
    last := 0
    for i := 0; i < points; i++ {
        c := int(math.Round(math.Pow(float64(rounds), float64(i)/float64(points-1))))
        if c <= last { c = last + 1 }
        if c > rounds { c = rounds }
        if c != last { out = append(out, c); last = c }
    }
    return out
}

func writeCurve(path string, checkpoints []int, curve []float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"rounds", "oob_rmse"}); err != nil { return err }
    for i := range checkpoints {
        if err := w.Write([]string{fmt.Sprintf("%d", checkpoints[i]), fmt.Sprintf("%.2f", math.Sqrt(curve[i]))}); err != nil { return err }
    }
    return nil
}

func plotCurve(path string, checkpoints []int, curve []float64) error {
    p := plot.New()
    p.Title.Text = "OOB Error vs Rounds"
    p.X.Label.Text = "Bootstrap rounds"
    p.Y.Label.Text = "OOB RMSE"
    pts := make(plotter.XYs, len(checkpoints))
    for i := range checkpoints {
        pts[i].X = float64(checkpoints[i])
        pts[i].Y = math.Sqrt(curve[i])
    }
    if err := plotutil.AddLinePoints(p, "OOB", pts); err != nil { return err }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func writeImportance(path string, names []string, imp []float64) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"feature", "rmse_increase"}); err != nil { return err }
    for i := range names {
        if err := w.Write([]string{names[i], fmt.Sprintf("%.2f", imp[i])}); err != nil { return err }
    }
    return nil
}

func plotImportance(path string, names []string, imp []float64) error {
    p := plot.New()
    p.Title.Text = "OOB Permutation Importance"
    p.Y.Label.Text = "RMSE increase"
    bars, err := plotter.NewBarChart(plotter.Values(imp), vg.Points(18))
    if err != nil { return err }
    p.Add(bars)
    p.NominalX(names...)
    p.X.Tick.Label.Rotation = math.Pi / 3
    p.X.Tick.Label.XAlign = -0.9
    p.X.Tick.Label.YAlign = -0.5
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return p.Save(9*vg.Inch, 4*vg.Inch, path)
}
