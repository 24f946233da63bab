// Package rpcapi defines the wire-level request/response types exchanged
// between a farmer and a node: the subset of the eth2030 JSON-RPC
// convention (plain, JSON-tagged structs with no transport logic baked
// in) that this module's consensus loop actually needs. Framing the
// values as JSON-RPC requests over HTTP/WebSocket is out of scope here;
// LoopbackTransport gives tests and in-process callers a channel-based
// stand-in for that framing.
package rpcapi

import "github.com/ab-network/subspace-core/primitives"

// FarmerAppInfo is what a farmer requests once at startup to learn the
// chain parameters it needs to plot and audit against.
type FarmerAppInfo struct {
	GenesisHash     primitives.Hash        `json:"genesisHash"`
	ProtocolVersion string                 `json:"protocolVersion"`
	HistorySize     primitives.HistorySize `json:"historySize"`
}

// SlotInfo is pushed to a farmer each time the node advances to a newly
// checkpointed proof-of-time slot; the farmer answers with a
// SubmitSolutionRequest if it finds a winning chunk.
type SlotInfo struct {
	Slot            primitives.SlotNumber     `json:"slot"`
	GlobalChallenge [32]byte                  `json:"globalChallenge"`
	SolutionRange   uint64                    `json:"solutionRange"`
	Checkpoints     primitives.PotCheckpoints `json:"checkpoints"`
}

// SubmitSolutionRequest is a farmer's answer to a SlotInfo: a candidate
// winning Solution for the slot named by Slot.
type SubmitSolutionRequest struct {
	Slot     primitives.SlotNumber `json:"slot"`
	Solution primitives.Solution   `json:"solution"`
}

// BlockSealingInfo is pushed to a farmer once a block has been assembled
// from its accepted solution and needs a seal (the farmer holds the
// reward-address signing key; the node does not).
type BlockSealingInfo struct {
	PreSealHash primitives.Hash `json:"preSealHash"`
}

// SubmitBlockSealRequest is a farmer's answer to a BlockSealingInfo: the
// seal bytes to attach to the header named by PreSealHash.
type SubmitBlockSealRequest struct {
	PreSealHash primitives.Hash `json:"preSealHash"`
	Seal        []byte          `json:"seal"`
}

// SegmentHeaderRequest asks a node for every segment header with index
// greater than or equal to From, used by a farmer catching up on the
// archived history it needs before it can plot new sectors.
type SegmentHeaderRequest struct {
	From primitives.SegmentIndex `json:"from"`
}

// SegmentHeaderResponse answers a SegmentHeaderRequest.
type SegmentHeaderResponse struct {
	Headers []primitives.SegmentHeader `json:"headers"`
}
