package ensemble

import (
    "context"
    "math/rand"
    "runtime"

    "github.com/pkg/errors"
    "golang.org/x/sync/errgroup"
)

type Config struct {
    Rounds  int   // number of bootstrap rounds (B)
    Seed    int64 // root seed for resampling
    Workers int   // parallel fits; <1 means NumCPU
    Task    Task
}

// Train fits cfg.Rounds base learners, each on its own bootstrap sample of
// X, and records the out-of-bag indices per round. Fits run in parallel
// but the member order and every bootstrap draw are fully determined by
// cfg.Seed. A failed fit aborts training; no partial ensemble is returned.
func Train(ctx context.Context, cfg Config, X [][]float64, y []float64, learner Learner) (*Ensemble, error) {
    if learner == nil { return nil, errors.New("ensemble: nil learner") }
    if cfg.Rounds < 0 { return nil, errors.Errorf("ensemble: negative round count %d", cfg.Rounds) }
    if len(X) == 0 { return nil, errors.New("ensemble: empty training set") }
    if len(X) != len(y) { return nil, errors.Errorf("ensemble: %d feature rows but %d targets", len(X), len(y)) }
    numFeatures := len(X[0])
    for i := range X {
        if len(X[i]) != numFeatures {
            return nil, errors.Wrapf(ErrSchemaMismatch, "row %d has %d features, want %d", i, len(X[i]), numFeatures)
        }
    }

    e := &Ensemble{
        Task:        cfg.Task,
        NumFeatures: numFeatures,
        LearnerName: learner.Name(),
        Members:     make([]Member, cfg.Rounds),
    }
    if cfg.Rounds == 0 { return e, nil }

    workers := cfg.Workers
    if workers < 1 { workers = runtime.NumCPU() }

    g, ctx := errgroup.WithContext(ctx)
    g.SetLimit(workers)
    for r := 0; r < cfg.Rounds; r++ {
        r := r
        g.Go(func() error {
            if err := ctx.Err(); err != nil { return err }
            rng := rand.New(rand.NewSource(roundSeed(cfg.Seed, r)))
            sample, oob := bootstrapSample(rng, len(X))
            Xb := make([][]float64, len(sample))
            yb := make([]float64, len(sample))
            for i, j := range sample {
                Xb[i] = X[j]
                yb[i] = y[j]
            }
            model, err := learner.Fit(Xb, yb)
            if err != nil { return errors.Wrapf(err, "ensemble: fit failed on round %d", r) }
            e.Members[r] = Member{Model: model, OOB: oob}
            return nil
        })
    }
    if err := g.Wait(); err != nil { return nil, err }
    return e, nil
}
