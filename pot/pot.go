// Package pot implements proof-of-time: a sequential BLAKE3 hash chain
// iterated a fixed number of times per slot, checkpointed at equal
// intervals, with a bounded-cache verifier and a small state machine that
// tracks the canonical tip of the chain.
package pot

import (
	"errors"

	"github.com/ab-network/subspace-core/primitives"
	"lukechampine.com/blake3"
)

// NumCheckpoints is the number of equally-spaced checkpoints recorded per
// slot; the last one is the slot's externally visible output.
const NumCheckpoints = 8

// ErrZeroIterations is returned when a slot's iteration count is zero:
// spec.md requires slot_iterations > 0 at all times.
var ErrZeroIterations = errors.New("pot: slot_iterations must be greater than zero")

// ErrIterationsNotDivisible is returned when slot_iterations doesn't split
// evenly into NumCheckpoints equal intervals.
var ErrIterationsNotDivisible = errors.New("pot: slot_iterations must be a multiple of NumCheckpoints")

// step advances the hash chain by one application of BLAKE3.
func step(x primitives.PotOutput) primitives.PotOutput {
	sum := blake3.Sum256(x[:])
	return primitives.PotOutput(sum)
}

// computeCheckpoints iterates the hash chain slotIterations times starting
// from seed (treated as the chain's first input), recording NumCheckpoints
// equally-spaced outputs.
func computeCheckpoints(slotIterations uint32, seed primitives.PotSeed) (primitives.PotCheckpoints, error) {
	if slotIterations == 0 {
		return nil, ErrZeroIterations
	}
	if slotIterations%NumCheckpoints != 0 {
		return nil, ErrIterationsNotDivisible
	}

	perCheckpoint := slotIterations / NumCheckpoints
	checkpoints := make(primitives.PotCheckpoints, NumCheckpoints)

	current := primitives.PotOutput(seed)
	for c := 0; c < NumCheckpoints; c++ {
		for i := uint32(0); i < perCheckpoint; i++ {
			current = step(current)
		}
		checkpoints[c] = current
	}
	return checkpoints, nil
}
