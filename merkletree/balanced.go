package merkletree

import "errors"

// ErrWrongLeafCount is returned when a Balanced tree is built from a number
// of leaves that isn't an exact power of two.
var ErrWrongLeafCount = errors.New("merkletree: leaf count must be a power of two")

// Balanced is a Merkle tree over exactly n = 2^depth leaves, all levels
// fully populated. It exposes the root, a proof per leaf, and verification.
type Balanced struct {
	// levels[0] holds the leaves, levels[len(levels)-1] holds the single
	// root node.
	levels [][]Hash
}

// NewBalanced builds a balanced Merkle tree over leaves. len(leaves) must be
// a power of two.
func NewBalanced(leaves []Hash) (*Balanced, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrWrongLeafCount
	}

	depth := 0
	for (1 << depth) < n {
		depth++
	}

	levels := make([][]Hash, depth+1)
	levels[0] = append([]Hash(nil), leaves...)

	for level := 0; level < depth; level++ {
		cur := levels[level]
		next := make([]Hash, len(cur)/2)
		for i := range next {
			next[i] = pairHash(cur[2*i], cur[2*i+1])
		}
		levels[level+1] = next
	}

	return &Balanced{levels: levels}, nil
}

// ComputeRootOnly computes just the root hash of leaves, without retaining
// intermediate levels. len(leaves) must be a power of two.
func ComputeRootOnly(leaves []Hash) (Hash, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return Hash{}, ErrWrongLeafCount
	}

	level := append([]Hash(nil), leaves...)
	for len(level) > 1 {
		next := make([]Hash, len(level)/2)
		for i := range next {
			next[i] = pairHash(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0], nil
}

// Root returns the tree's root hash.
func (t *Balanced) Root() Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// NumLeaves returns the number of leaves in the tree.
func (t *Balanced) NumLeaves() int {
	return len(t.levels[0])
}

// Proof returns the Merkle authentication path for the leaf at index,
// ordered from the leaf's sibling up to the level just below the root.
func (t *Balanced) Proof(index int) ([]Hash, error) {
	if index < 0 || index >= t.NumLeaves() {
		return nil, errors.New("merkletree: leaf index out of range")
	}

	proof := make([]Hash, 0, len(t.levels)-1)
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		sibling := idx ^ 1
		proof = append(proof, t.levels[level][sibling])
		idx /= 2
	}
	return proof, nil
}

// AllProofs returns the proof for every leaf, in leaf order.
func (t *Balanced) AllProofs() [][]Hash {
	proofs := make([][]Hash, t.NumLeaves())
	for i := range proofs {
		// Error is impossible: i is always in range.
		proofs[i], _ = t.Proof(i)
	}
	return proofs
}

// VerifyBalanced checks that leaf at the given index, combined with proof,
// reproduces root.
func VerifyBalanced(root Hash, proof []Hash, index int, leaf Hash) bool {
	current := leaf
	idx := index
	for _, sibling := range proof {
		if idx&1 == 0 {
			current = pairHash(current, sibling)
		} else {
			current = pairHash(sibling, current)
		}
		idx /= 2
	}
	return current == root
}
