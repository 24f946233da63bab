package slotworker

import (
	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

// Body is a block's body: the archived-segment headers this block
// finalizes into its super-segment (if any have accumulated since the
// parent) plus the transactions it includes. There is no execution
// payload in this domain — the body exists to commit to history, not to
// an account-state transition.
type Body struct {
	OwnSegmentHeaders []primitives.SegmentHeader
	Transactions      [][]byte
}

// maxBodyLeaves bounds the unbalanced commitment tree big enough for any
// realistic body: more than enough room for one era's worth of archived
// segments plus a full block of transactions.
const maxBodyLeaves = 1 << 20

// Root computes the body's commitment root: an unbalanced Merkle tree
// (arbitrary leaf count, no padding) over the segment-header hashes
// followed by the transaction buffers, in that order. An empty body
// (genesis, or a slot with nothing archived and no transactions) hashes
// as a single zero leaf.
func (b Body) Root() merkletree.Hash {
	leaves := make([]merkletree.Hash, 0, len(b.OwnSegmentHeaders)+len(b.Transactions)+1)
	for _, h := range b.OwnSegmentHeaders {
		leaves = append(leaves, h.Hash())
	}
	for _, tx := range b.Transactions {
		leaves = append(leaves, merkletree.LeafHash(tx))
	}
	if len(leaves) == 0 {
		leaves = append(leaves, merkletree.Hash{})
	}
	tree, err := merkletree.NewUnbalanced(leaves, maxBodyLeaves)
	if err != nil {
		// Only possible if a body somehow carries more than maxBodyLeaves
		// segment headers and transactions combined.
		panic(err)
	}
	return tree.Root()
}

// Block pairs a sealed header with its body.
type Block struct {
	Header primitives.BlockHeader
	Body   Body
}
