package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// partitionStream separates the shuffle stream from the per-page streams,
// which are keyed by the page's global index.
const partitionStream = 0x7061727469746e

// Partition shuffles [0, n) with a source derived from seed and splits it into
// the first round(n*ratio) indices for training and the rest for validation.
func Partition(n int, ratio float64, seed uint64) (train, val []int, err error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("partition: negative image count %d", n)
	}
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return nil, nil, fmt.Errorf("partition: train ratio %g outside [0,1]", ratio)
	}
	rng := rand.New(rand.NewPCG(seed, partitionStream))
	perm := rng.Perm(n)
	k := int(math.Round(float64(n) * ratio))
	return perm[:k:k], perm[k:], nil
}
