package rpcapi

import (
	"errors"
)

// ErrLoopbackClosed is returned by any LoopbackTransport operation once
// Close has been called.
var ErrLoopbackClosed = errors.New("rpcapi: loopback transport closed")

// LoopbackTransport stands in for the farmer<->node JSON-RPC connection
// in tests and single-process deployments: SlotInfo/BlockSealingInfo
// flow node-to-farmer on one channel pair, SubmitSolutionRequest/
// SubmitBlockSealRequest flow farmer-to-node on the other. Nothing here
// touches JSON encoding; it exists purely so slotworker and farmer code
// can be exercised against each other without a real transport.
type LoopbackTransport struct {
	slotInfo     chan SlotInfo
	sealingInfo  chan BlockSealingInfo
	solutions    chan SubmitSolutionRequest
	seals        chan SubmitBlockSealRequest

	closed chan struct{}
}

// NewLoopbackTransport creates a LoopbackTransport with the given
// per-direction buffer depth.
func NewLoopbackTransport(buffer int) *LoopbackTransport {
	return &LoopbackTransport{
		slotInfo:    make(chan SlotInfo, buffer),
		sealingInfo: make(chan BlockSealingInfo, buffer),
		solutions:   make(chan SubmitSolutionRequest, buffer),
		seals:       make(chan SubmitBlockSealRequest, buffer),
		closed:      make(chan struct{}),
	}
}

// PushSlotInfo delivers a SlotInfo to whichever side is reading with
// NextSlotInfo. Blocks if the channel is full.
func (t *LoopbackTransport) PushSlotInfo(info SlotInfo) error {
	select {
	case <-t.closed:
		return ErrLoopbackClosed
	case t.slotInfo <- info:
		return nil
	}
}

// NextSlotInfo blocks until a SlotInfo arrives or the transport closes.
func (t *LoopbackTransport) NextSlotInfo() (SlotInfo, error) {
	select {
	case <-t.closed:
		return SlotInfo{}, ErrLoopbackClosed
	case info := <-t.slotInfo:
		return info, nil
	}
}

// PushBlockSealingInfo delivers a BlockSealingInfo to the farmer side.
func (t *LoopbackTransport) PushBlockSealingInfo(info BlockSealingInfo) error {
	select {
	case <-t.closed:
		return ErrLoopbackClosed
	case t.sealingInfo <- info:
		return nil
	}
}

// NextBlockSealingInfo blocks until a BlockSealingInfo arrives or the
// transport closes.
func (t *LoopbackTransport) NextBlockSealingInfo() (BlockSealingInfo, error) {
	select {
	case <-t.closed:
		return BlockSealingInfo{}, ErrLoopbackClosed
	case info := <-t.sealingInfo:
		return info, nil
	}
}

// SubmitSolution delivers a farmer's solution to the node side.
func (t *LoopbackTransport) SubmitSolution(req SubmitSolutionRequest) error {
	select {
	case <-t.closed:
		return ErrLoopbackClosed
	case t.solutions <- req:
		return nil
	}
}

// NextSolution blocks until a SubmitSolutionRequest arrives or the
// transport closes.
func (t *LoopbackTransport) NextSolution() (SubmitSolutionRequest, error) {
	select {
	case <-t.closed:
		return SubmitSolutionRequest{}, ErrLoopbackClosed
	case req := <-t.solutions:
		return req, nil
	}
}

// SubmitBlockSeal delivers a farmer's seal to the node side.
func (t *LoopbackTransport) SubmitBlockSeal(req SubmitBlockSealRequest) error {
	select {
	case <-t.closed:
		return ErrLoopbackClosed
	case t.seals <- req:
		return nil
	}
}

// NextBlockSeal blocks until a SubmitBlockSealRequest arrives or the
// transport closes.
func (t *LoopbackTransport) NextBlockSeal() (SubmitBlockSealRequest, error) {
	select {
	case <-t.closed:
		return SubmitBlockSealRequest{}, ErrLoopbackClosed
	case req := <-t.seals:
		return req, nil
	}
}

// Close unblocks every pending and future Next*/Push* call with
// ErrLoopbackClosed. Safe to call more than once.
func (t *LoopbackTransport) Close() error {
	select {
	case <-t.closed:
	default:
		close(t.closed)
	}
	return nil
}
