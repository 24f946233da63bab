package pot

import (
	"crypto/subtle"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ab-network/subspace-core/primitives"
)

// DefaultCacheSize bounds the number of distinct (slot_iterations, seed)
// checkpoint sets a Verifier remembers.
const DefaultCacheSize = 1_000_000

type cacheKey struct {
	slotIterations uint32
	seed           primitives.PotSeed
}

// Verifier recomputes and caches proof-of-time checkpoints. It never
// computes speculatively: TryGetCheckpoints only ever returns what Verify
// has already proven correct or an Evaluator sharing this Verifier has
// already computed.
type Verifier struct {
	cache *lru.Cache[cacheKey, primitives.PotCheckpoints]
}

// NewVerifier builds a Verifier with a bounded LRU cache of cacheSize
// entries.
func NewVerifier(cacheSize int) (*Verifier, error) {
	cache, err := lru.New[cacheKey, primitives.PotCheckpoints](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Verifier{cache: cache}, nil
}

// TryGetCheckpoints returns the cached checkpoints for (slotIterations,
// seed) if a prior Verify call already proved them correct or an Evaluator
// sharing this Verifier computed them, without computing anything.
func (v *Verifier) TryGetCheckpoints(slotIterations uint32, seed primitives.PotSeed) (primitives.PotCheckpoints, bool) {
	return v.cache.Get(cacheKey{slotIterations: slotIterations, seed: seed})
}

// Verify recomputes checkpoints for (slotIterations, seed) and compares
// them against the claimed checkpoints in constant time. On success the
// checkpoints are cached so future TryGetCheckpoints calls for the same
// key succeed without recomputation.
func (v *Verifier) Verify(slotIterations uint32, seed primitives.PotSeed, checkpoints primitives.PotCheckpoints) (bool, error) {
	if len(checkpoints) != NumCheckpoints {
		return false, nil
	}

	recomputed, err := computeCheckpoints(slotIterations, seed)
	if err != nil {
		return false, err
	}

	ok := true
	for i := range recomputed {
		if subtle.ConstantTimeCompare(recomputed[i][:], checkpoints[i][:]) == 0 {
			ok = false
		}
	}
	if !ok {
		return false, nil
	}

	v.cache.Add(cacheKey{slotIterations: slotIterations, seed: seed}, checkpoints)
	return true, nil
}
