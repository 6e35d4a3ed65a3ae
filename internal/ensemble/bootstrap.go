package ensemble

import "math/rand"

// bootstrapSample draws n indices uniformly with replacement from [0, n)
// and returns the draw together with the sorted indices never drawn.
func bootstrapSample(rng *rand.Rand, n int) (sample, oob []int) {
    sample = make([]int, n)
    drawn := make([]bool, n)
    for i := 0; i < n; i++ {
        j := rng.Intn(n)
        sample[i] = j
        drawn[j] = true
    }
    for i := 0; i < n; i++ {
        if !drawn[i] { oob = append(oob, i) }
    }
    return sample, oob
}

// roundSeed derives the seed for one training round. Rounds get
// independent sub-generators so results do not depend on worker
// scheduling.
func roundSeed(seed int64, round int) int64 {
    return seed + int64(round)*0x9E3779B9
}
