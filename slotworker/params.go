// Package slotworker drives the per-slot control flow: given a freshly
// checkpointed PoT slot, it selects a parent block, asks a farmer for a
// winning Solution, assembles and derives the new block's consensus
// parameters, and seals it.
package slotworker

import (
	"math/bits"

	"github.com/ab-network/subspace-core/primitives"
)

// ConsensusConstants are the chain-wide constants consensus-parameter
// derivation is a pure function of.
type ConsensusConstants struct {
	EraDuration          uint64 // blocks per era
	BlockAuthoringDelay  primitives.SlotNumber
	SlotDuration         uint64 // expected milliseconds per slot
	InitialSolutionRange uint64
}

// The clamp applied to an era-boundary solution-range adjustment: the new
// range is never less than a quarter nor more than four times the
// previous one. This keeps a single unexpectedly fast or slow era from
// swinging difficulty by more than 4x in either direction.
const (
	solutionRangeMinDivisor = 4
	solutionRangeMaxFactor  = 4
)

// DeriveNextSolutionRange computes the solution range that will take
// effect at the next era boundary, given how many slots the era actually
// took versus how many it was expected to take. A faster-than-expected era
// (more blocks found than the target) means solutions were too easy to
// find, so the range shrinks; a slower era means the range grows — in both
// cases proportionally to the ratio of actual to expected duration,
// clamped to [previousRange/4, previousRange*4].
func DeriveNextSolutionRange(actualEraSlots, expectedEraSlots uint64, previousRange uint64) uint64 {
	if expectedEraSlots == 0 {
		return previousRange
	}

	// adjusted = previousRange * actual / expected, via a 128-bit
	// intermediate so it never overflows for realistic ranges.
	adjusted := mulDiv(previousRange, actualEraSlots, expectedEraSlots)

	min := previousRange / solutionRangeMinDivisor
	max := previousRange * solutionRangeMaxFactor
	if max < previousRange {
		// overflow guard: if previousRange is already enormous, don't wrap.
		max = ^uint64(0)
	}
	if adjusted < min {
		return min
	}
	if adjusted > max {
		return max
	}
	return adjusted
}

// mulDiv computes a*b/c without overflowing a uint64 intermediate, using
// the 128-bit multiply/divide primitives from math/bits.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
