package merkletree

import (
	"errors"
	"math/bits"
)

// ErrUnsupportedBits is returned when a Sparse tree is asked for a depth
// outside the range this port supports.
var ErrUnsupportedBits = errors.New("merkletree: sparse tree depth must be in 1..=63")

// ErrIllegalZeroSkip is returned when the input stream to ComputeSparseRoot
// carries an explicit Empty run of length zero: a no-op that conveys
// nothing and is rejected rather than silently accepted.
var ErrIllegalZeroSkip = errors.New("merkletree: sparse tree empty run with skip_count 0 is illegal")

// sparseMaxBits caps the sparse tree depth at 63 rather than the reference
// implementation's 128: a depth this port can't express without a bignum
// leaf counter isn't one any real caller needs, since leaf indices here are
// piece/sector identifiers that fit comfortably in a uint64.
const sparseMaxBits = 63

// SparseLeaf is one entry of the ordered stream consumed by ComputeSparseRoot.
// Either it carries an occupied leaf's hash, or it declares a run of
// consecutive empty ([0;32]) leaves via SkipCount.
type SparseLeaf struct {
	Occupied  bool
	Hash      Hash
	SkipCount uint64
}

// OccupiedLeaf builds a SparseLeaf for a single non-empty leaf.
func OccupiedLeaf(h Hash) SparseLeaf {
	return SparseLeaf{Occupied: true, Hash: h}
}

// EmptyRun builds a SparseLeaf declaring skipCount consecutive empty leaves.
func EmptyRun(skipCount uint64) SparseLeaf {
	return SparseLeaf{Occupied: false, SkipCount: skipCount}
}

// ComputeSparseRoot computes the root of a Sparse Merkle Tree of 2^bitsK
// leaves, most of which are expected to be empty ([0;32]). leaves is an
// ordered stream of occupied values and empty runs; if it ends before
// 2^bitsK leaves have been accounted for, the remainder is treated as one
// final implicit empty run out to the boundary. Supplying more leaves than
// 2^bitsK fits returns ErrTooManyLeaves.
//
// The pair-hash function short-circuits: hashing two [0;32] children yields
// [0;32] again, so whole empty subtrees collapse to the zero hash without
// ever being walked.
func ComputeSparseRoot(bitsK uint8, leaves []SparseLeaf) (Hash, error) {
	if bitsK == 0 || bitsK > sparseMaxBits {
		return Hash{}, ErrUnsupportedBits
	}

	total := uint64(1) << bitsK
	stack := make([]Hash, bitsK+1)
	var numLeaves uint64

	for _, leaf := range leaves {
		if leaf.Occupied {
			if numLeaves >= total {
				return Hash{}, ErrTooManyLeaves
			}

			current := leaf.Hash
			// Every bit set to 1 corresponds to an active tree level that
			// the new leaf needs to merge up through.
			lowestActiveLevels := bits.TrailingZeros64(^numLeaves)
			for i := 0; i < lowestActiveLevels; i++ {
				current = pairHash(stack[i], current)
			}
			stack[lowestActiveLevels] = current
			numLeaves++
			continue
		}

		// An explicit zero-length empty run is a degenerate, meaningless
		// entry: the implicit trailing pad below is the only place a
		// zero-length skip is allowed to occur.
		if leaf.SkipCount == 0 {
			return Hash{}, ErrIllegalZeroSkip
		}

		next, err := sparseSkipLeaves(stack, numLeaves, leaf.SkipCount, total)
		if err != nil {
			return Hash{}, err
		}
		numLeaves = next
	}

	if numLeaves < total {
		next, err := sparseSkipLeaves(stack, numLeaves, total-numLeaves, total)
		if err != nil {
			return Hash{}, err
		}
		numLeaves = next
	}

	return stack[bitsK], nil
}

// sparseSkipLeaves advances the stack past skipCount consecutive empty
// leaves, merging whole aligned chunks of the zero subtree at once instead
// of walking one empty leaf at a time.
func sparseSkipLeaves(stack []Hash, numLeaves, skipCount, total uint64) (uint64, error) {
	if numLeaves+skipCount > total {
		return numLeaves, ErrTooManyLeaves
	}

	for skipCount > 0 {
		maxLevelsToSkip := min(ilog2(skipCount), bits.TrailingZeros64(numLeaves))
		chunkSize := uint64(1) << uint(maxLevelsToSkip)

		level := maxLevelsToSkip
		var current Hash
		for i := maxLevelsToSkip; i < len(stack); i++ {
			if numLeaves&(uint64(1)<<uint(level)) == 0 {
				break
			}
			item := stack[i]
			if !(item == Hash{} && current == Hash{}) {
				current = pairHash(item, current)
			}
			level++
		}
		stack[level] = current

		numLeaves += chunkSize
		skipCount -= chunkSize
	}

	return numLeaves, nil
}

// ilog2 returns floor(log2(x)) for x > 0.
func ilog2(x uint64) int {
	return bits.Len64(x) - 1
}

// VerifySparse checks that leaf (or the zero hash, for a claimed-empty leaf)
// at leafIndex, combined with proof, reproduces root in a tree of 2^bitsK
// leaves. proof must hold exactly bitsK siblings, ordered from the leaf's
// level up to just below the root.
func VerifySparse(bitsK uint8, root Hash, proof []Hash, leafIndex uint64, leaf Hash) bool {
	if bitsK == 0 || bitsK > sparseMaxBits {
		return false
	}
	if leafIndex >= uint64(1)<<bitsK {
		return false
	}
	if len(proof) != int(bitsK) {
		return false
	}

	current := leaf
	position := leafIndex
	for _, sibling := range proof {
		if position%2 == 0 {
			current = pairHash(current, sibling)
		} else {
			current = pairHash(sibling, current)
		}
		position /= 2
	}
	return current == root
}
