package pot

import "github.com/ab-network/subspace-core/primitives"

// Evaluator is a local proof-of-time producer ("timekeeper"): it computes
// checkpoints for a slot directly, rather than verifying someone else's
// claim, and seeds the shared verifier's cache with the result so the rest
// of the node treats locally-produced proofs the same as verified ones.
type Evaluator struct {
	verifier *Verifier
}

// NewEvaluator builds an Evaluator that records its output into verifier's
// cache.
func NewEvaluator(verifier *Verifier) *Evaluator {
	return &Evaluator{verifier: verifier}
}

// Evaluate computes slotIterations steps of the hash chain from seed,
// returning the slot's checkpoints and caching them as verified.
func (e *Evaluator) Evaluate(slotIterations uint32, seed primitives.PotSeed) (primitives.PotCheckpoints, error) {
	checkpoints, err := computeCheckpoints(slotIterations, seed)
	if err != nil {
		return nil, err
	}
	e.verifier.cache.Add(cacheKey{slotIterations: slotIterations, seed: seed}, checkpoints)
	return checkpoints, nil
}

// EvaluateNextSlot evaluates the slot described by input and returns the
// SlotInfo a slot worker would broadcast.
func (e *Evaluator) EvaluateNextSlot(input NextSlotInput) (SlotInfo, error) {
	checkpoints, err := e.Evaluate(input.SlotIterations, input.Seed)
	if err != nil {
		return SlotInfo{}, err
	}
	return SlotInfo{Slot: input.Slot, Checkpoints: checkpoints}, nil
}

// SlotInfo is one slot's worth of freshly produced or gossiped proof of
// time, ready to hand to the slot worker.
type SlotInfo struct {
	Slot        primitives.SlotNumber
	Checkpoints primitives.PotCheckpoints
}
