package primitives

import "github.com/ab-network/subspace-core/merkletree"

// PublicKey is a farmer's identity public key.
type PublicKey [32]byte

// Solution is what a farmer returns in answer to a slot challenge: a
// winning chunk, proven to belong to a plotted sector's piece, alongside
// the proof-of-space proof that chunk was legitimately plotted.
type Solution struct {
	PublicKey    PublicKey
	SectorIndex  SectorIndex
	HistorySize  HistorySize
	PieceOffset  uint16
	RecordRoot   merkletree.Hash
	RecordProof  []merkletree.Hash
	Chunk        Chunk
	ChunkProof   []merkletree.Hash
	ProofOfSpace []byte
}

// BlockHeaderPrefix is the version/number/shard/timestamp/commitment
// portion of a block header, independent of consensus.
type BlockHeaderPrefix struct {
	Version    uint8
	Number     BlockNumber
	Shard      ShardIndex
	Timestamp  uint64
	ParentRoot merkletree.Hash
	MmrRoot    merkletree.Hash
}

// ConsensusInfo carries the per-slot consensus facts committed to by a
// header: the slot claimed, the PoT checkpoint consumed, the future PoT
// output this block commits to, and the winning Solution.
type ConsensusInfo struct {
	Slot              SlotNumber
	ProofOfTime       PotOutput
	FutureProofOfTime PotOutput
	Solution          Solution
}

// ConsensusParameters carries the derived parameters that apply starting
// at this block: the solution range in effect, the range that will take
// over at the next era boundary, any scheduled PoT parameters change, and
// an optional root committing to a super-segment (a batch of archived
// segment headers) finalized by this block.
type ConsensusParameters struct {
	SolutionRange      uint64
	NextSolutionRange  uint64
	PotParameterChange *PotParametersChange
	SuperSegmentRoot   *merkletree.Hash
}

// BlockResult carries the outcome of executing a block's body: its body
// root and the resulting state root.
type BlockResult struct {
	BodyRoot  merkletree.Hash
	StateRoot merkletree.Hash
}

// BlockHeader is a fully assembled block header, as produced by the block
// builder and verified by any node validating the chain.
type BlockHeader struct {
	Prefix              BlockHeaderPrefix
	ConsensusInfo       ConsensusInfo
	ConsensusParameters ConsensusParameters
	Result              BlockResult
	Seal                []byte
}

// PreSealHash computes the hash the seal signs: every field of the header
// except the seal itself.
func (h *BlockHeader) PreSealHash() merkletree.Hash {
	return hashHeaderFields(h, false)
}

// Hash computes the header's full hash, including the seal. Only valid
// once Seal has been set.
func (h *BlockHeader) Hash() merkletree.Hash {
	return hashHeaderFields(h, true)
}
