package merkletree

import (
	"errors"
	"math/bits"
)

// ErrTooManyLeaves is returned when more leaves are supplied than the
// declared max_n for an Unbalanced tree permits.
var ErrTooManyLeaves = errors.New("merkletree: leaf count exceeds max_n")

// UnbalancedProofEntry is one level of an Unbalanced proof path. HasSibling
// is false when, at that level, the node being proved was the last,
// unpaired element and was promoted to the next level unchanged.
type UnbalancedProofEntry struct {
	HasSibling bool
	Sibling    Hash
}

// Unbalanced is a Merkle tree over any number of leaves n ≤ max_n = 2^k.
// Unlike Balanced, levels need not have an even number of nodes: an odd
// node out at a given level is promoted to the next level unchanged rather
// than being paired with a duplicate or a zero leaf. This "fold" strategy
// is deterministic for a given sequence of leaves and self-describing in
// the proof (each level of the proof records whether a sibling existed),
// so verification only needs the declared max_n to bound the proof depth.
type Unbalanced struct {
	levels [][]Hash
	maxN   int
}

// depthFor returns ceil(log2(maxN)) for maxN >= 1.
func depthFor(maxN int) int {
	if maxN <= 1 {
		return 0
	}
	return bits.Len(uint(maxN - 1))
}

// NewUnbalanced builds an Unbalanced tree over leaves, declared to live in a
// tree of at most maxN leaves.
func NewUnbalanced(leaves []Hash, maxN int) (*Unbalanced, error) {
	if len(leaves) == 0 {
		return nil, errors.New("merkletree: at least one leaf is required")
	}
	if len(leaves) > maxN {
		return nil, ErrTooManyLeaves
	}

	depth := depthFor(maxN)
	levels := make([][]Hash, 0, depth+1)
	levels = append(levels, append([]Hash(nil), leaves...))

	// Fold exactly `depth` times regardless of how quickly the actual leaf
	// count collapses to one node, so the proof length only ever depends on
	// the declared maxN, never on the number of real leaves.
	for level := 0; level < depth; level++ {
		cur := levels[len(levels)-1]
		next := make([]Hash, 0, (len(cur)+1)/2)
		i := 0
		for i < len(cur) {
			if i+1 < len(cur) {
				next = append(next, pairHash(cur[i], cur[i+1]))
				i += 2
			} else {
				next = append(next, cur[i])
				i++
			}
		}
		levels = append(levels, next)
	}

	return &Unbalanced{levels: levels, maxN: maxN}, nil
}

// Root returns the tree's root hash.
func (t *Unbalanced) Root() Hash {
	return t.levels[len(t.levels)-1][0]
}

// NumLeaves returns the number of actual leaves supplied at construction.
func (t *Unbalanced) NumLeaves() int {
	return len(t.levels[0])
}

// Proof returns the authentication path for the leaf at index.
func (t *Unbalanced) Proof(index int) ([]UnbalancedProofEntry, error) {
	if index < 0 || index >= t.NumLeaves() {
		return nil, errors.New("merkletree: leaf index out of range")
	}

	proof := make([]UnbalancedProofEntry, 0, len(t.levels)-1)
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		cur := t.levels[level]
		sibling := idx ^ 1
		if sibling < len(cur) {
			proof = append(proof, UnbalancedProofEntry{HasSibling: true, Sibling: cur[sibling]})
		} else {
			proof = append(proof, UnbalancedProofEntry{HasSibling: false})
		}
		idx /= 2
	}
	return proof, nil
}

// AllProofs returns the proof for every leaf, in leaf order.
func (t *Unbalanced) AllProofs() [][]UnbalancedProofEntry {
	proofs := make([][]UnbalancedProofEntry, t.NumLeaves())
	for i := range proofs {
		proofs[i], _ = t.Proof(i)
	}
	return proofs
}

// VerifyUnbalanced checks that leaf at the given index, combined with proof,
// reproduces root, for a tree declared to hold at most maxN leaves.
func VerifyUnbalanced(root Hash, proof []UnbalancedProofEntry, index int, leaf Hash, maxN int) bool {
	if index < 0 || index >= maxN {
		return false
	}
	if len(proof) != depthFor(maxN) {
		return false
	}

	current := leaf
	idx := index
	for _, entry := range proof {
		if entry.HasSibling {
			if idx&1 == 0 {
				current = pairHash(current, entry.Sibling)
			} else {
				current = pairHash(entry.Sibling, current)
			}
		}
		// else: node was promoted unchanged at this level.
		idx /= 2
	}
	return current == root
}
