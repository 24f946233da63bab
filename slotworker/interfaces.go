package slotworker

import (
	"context"
	"errors"

	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

// ErrNoParent is returned by ChainInfo.BestHeader when the chain has not
// been initialized with a genesis block yet.
var ErrNoParent = errors.New("slotworker: no parent header available")

// ChainInfo answers the questions a block builder needs about the chain it
// is extending: its current best header and any segment headers that have
// been archived but not yet committed into a block's body.
type ChainInfo interface {
	BestHeader() (primitives.BlockHeader, merkletree.Hash, error)
	PendingSegmentHeaders(parent merkletree.Hash) ([]primitives.SegmentHeader, error)
}

// SolutionProvider asks a farmer to answer a slot's global challenge. It
// returns (nil, nil) if no farmer could produce a winning Solution in
// time, which is not itself an error — the slot is simply not claimed.
type SolutionProvider interface {
	FindSolution(ctx context.Context, slot primitives.SlotNumber, globalChallenge [32]byte) (*primitives.Solution, error)
}

// Sealer signs a block's pre-seal hash. Returning (nil, nil) means the
// caller declined to seal (for example, it isn't the solution's claimed
// identity), which the builder surfaces as ErrFailedToSeal.
type Sealer interface {
	SealBlock(preSealHash merkletree.Hash) ([]byte, error)
}
