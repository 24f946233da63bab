package slotworker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ab-network/subspace-core/primitives"
	"lukechampine.com/blake3"
)

// ErrFailedToSeal is returned when a Sealer declines to produce a seal for
// an otherwise fully assembled block.
var ErrFailedToSeal = errors.New("slotworker: failed to seal block")

// ErrNoSolution is returned when no farmer answered a slot's challenge in
// time; the slot is simply skipped, not an error condition for the caller
// to treat as a failure.
var ErrNoSolution = errors.New("slotworker: no solution found for slot")

// GlobalChallengeFromPot derives the audit challenge every farmer evaluates
// a slot's candidate chunks against, from the PoT output consumed for that
// slot.
func GlobalChallengeFromPot(output primitives.PotOutput) (challenge [32]byte) {
	h := blake3.Sum256(output[:])
	copy(challenge[:], h[:])
	return challenge
}

// Builder assembles and seals new blocks, grounded on the shape of a
// single-shard beacon-chain block builder: derive a header prefix,
// compute consensus parameters, assemble a body, hash, and seal.
type Builder struct {
	constants ConsensusConstants
	chain     ChainInfo
	farmer    SolutionProvider
	sealer    Sealer
	version   uint8
}

// NewBuilder constructs a Builder.
func NewBuilder(constants ConsensusConstants, chain ChainInfo, farmer SolutionProvider, sealer Sealer) *Builder {
	return &Builder{constants: constants, chain: chain, farmer: farmer, sealer: sealer, version: 1}
}

// Build assembles and seals one block for slotToClaim, consuming the PoT
// output at slotToClaim+BlockAuthoringDelay (already resolved by the
// caller into potOutput) and the PoT output one step further
// out for the header's "future proof of time" field. It returns
// ErrNoSolution if no farmer answered in time, and ErrFailedToSeal if the
// sealer declined to seal an otherwise-complete block.
func (b *Builder) Build(
	ctx context.Context,
	slotToClaim primitives.SlotNumber,
	potOutput primitives.PotOutput,
	futurePotOutput primitives.PotOutput,
	timestampMillis uint64,
) (*Block, error) {
	parent, parentHash, err := b.chain.BestHeader()
	if err != nil {
		return nil, fmt.Errorf("slotworker: selecting parent: %w", err)
	}

	globalChallenge := GlobalChallengeFromPot(potOutput)

	solution, err := b.farmer.FindSolution(ctx, slotToClaim, globalChallenge)
	if err != nil {
		return nil, fmt.Errorf("slotworker: requesting solution: %w", err)
	}
	if solution == nil {
		return nil, ErrNoSolution
	}

	blockNumber := parent.Prefix.Number + 1
	consensusParams := deriveConsensusParameters(b.constants, parent, blockNumber)

	segmentHeaders, err := b.chain.PendingSegmentHeaders(parentHash)
	if err != nil {
		return nil, fmt.Errorf("slotworker: creating body: %w", err)
	}
	body := Body{OwnSegmentHeaders: segmentHeaders}

	header := primitives.BlockHeader{
		Prefix: primitives.BlockHeaderPrefix{
			Version:    b.version,
			Number:     blockNumber,
			Shard:      parent.Prefix.Shard,
			Timestamp:  timestampMillis,
			ParentRoot: parentHash,
		},
		ConsensusInfo: primitives.ConsensusInfo{
			Slot:              slotToClaim,
			ProofOfTime:       potOutput,
			FutureProofOfTime: futurePotOutput,
			Solution:          *solution,
		},
		ConsensusParameters: consensusParams,
		Result: primitives.BlockResult{
			BodyRoot: body.Root(),
		},
	}

	preSealHash := header.PreSealHash()
	seal, err := b.sealer.SealBlock(preSealHash)
	if err != nil {
		return nil, fmt.Errorf("slotworker: sealing: %w", err)
	}
	if seal == nil {
		return nil, ErrFailedToSeal
	}
	header.Seal = seal

	return &Block{Header: header, Body: body}, nil
}

// deriveConsensusParameters computes the parameters in effect for
// blockNumber, given its parent. The solution range carries forward
// unchanged except at an era boundary, where it's replaced by whatever the
// parent's block recorded as next_solution_range; a scheduled PoT
// parameters change is retained until its slot passes, then cleared.
func deriveConsensusParameters(constants ConsensusConstants, parent primitives.BlockHeader, blockNumber primitives.BlockNumber) primitives.ConsensusParameters {
	atEraBoundary := constants.EraDuration > 0 && uint64(blockNumber)%constants.EraDuration == 0

	solutionRange := parent.ConsensusParameters.SolutionRange
	nextSolutionRange := parent.ConsensusParameters.NextSolutionRange
	if atEraBoundary {
		solutionRange = parent.ConsensusParameters.NextSolutionRange
		nextSolutionRange = solutionRange
	}

	var change *primitives.PotParametersChange
	if parent.ConsensusParameters.PotParameterChange != nil &&
		parent.ConsensusParameters.PotParameterChange.Slot > parent.ConsensusInfo.Slot {
		change = parent.ConsensusParameters.PotParameterChange
	}

	return primitives.ConsensusParameters{
		SolutionRange:      solutionRange,
		NextSolutionRange:  nextSolutionRange,
		PotParameterChange: change,
		SuperSegmentRoot:   nil,
	}
}
