package slotworker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ab-network/subspace-core/log"
	"github.com/ab-network/subspace-core/primitives"
)

// currentTimeMillis returns the current wall-clock time as milliseconds
// since the Unix epoch, saturated into a uint64 (never negative on any
// system clock this runs on).
func currentTimeMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// PotSlotInfo is what the PoT source emits for every newly produced slot:
// its checkpoints, the most recent being that slot's output.
type PotSlotInfo struct {
	Slot        primitives.SlotNumber
	Checkpoints primitives.PotCheckpoints
}

// SyncStatus reports whether the node is still catching up to the chain
// tip. While syncing, the worker keeps forwarding PoT but does not attempt
// block production.
type SyncStatus interface {
	IsSyncing() bool
}

// BlockSink receives every block the worker successfully seals.
type BlockSink interface {
	SubmitBlock(*Block) error
}

// Worker drives the slot loop: for every PotSlotInfo received, it computes
// the slot to claim, skips it if the node is syncing or the slot would be
// negative, and otherwise asks the Builder to assemble and seal a block.
//
// A panic from the builder or any callback it invokes (the farmer's solve
// path, the sealer) is recovered at this boundary rather than crashing the
// whole process; panicExit records that it happened so a supervising CLI
// command can decide to exit non-zero.
type Worker struct {
	builder    *Builder
	sync       SyncStatus
	sink       BlockSink
	delay      primitives.SlotNumber
	logger     *log.Logger
	panicExit  atomic.Bool
	lastProven primitives.SlotNumber
	haveProven bool
}

// NewWorker builds a Worker.
func NewWorker(builder *Builder, sync SyncStatus, sink BlockSink, blockAuthoringDelay primitives.SlotNumber) *Worker {
	return &Worker{
		builder: builder,
		sync:    sync,
		sink:    sink,
		delay:   blockAuthoringDelay,
		logger:  log.Default().Module("slotworker"),
	}
}

// PanicExit reports whether a panic was ever recovered while handling a
// slot; once true it stays true for the life of the Worker.
func (w *Worker) PanicExit() bool { return w.panicExit.Load() }

// HandleSlot processes one PotSlotInfo, as described on Worker. It never
// panics; errors from block assembly (other than ErrNoSolution, which is
// an expected "didn't win this slot" outcome) are logged and swallowed,
// matching the "missing parent header aborts the slot without panicking"
// failure model.
func (w *Worker) HandleSlot(ctx context.Context, info PotSlotInfo, potOutputAt func(primitives.SlotNumber) (primitives.PotOutput, bool)) {
	defer func() {
		if r := recover(); r != nil {
			w.panicExit.Store(true)
			w.logger.Error("recovered panic handling slot", "slot", info.Slot, "panic", fmt.Sprint(r))
		}
	}()

	if w.haveProven && info.Slot <= w.lastProven {
		return
	}
	w.haveProven = true
	w.lastProven = info.Slot

	if info.Slot < w.delay {
		return
	}
	slotToClaim := info.Slot - w.delay

	if w.sync.IsSyncing() {
		return
	}

	potOutput, ok := potOutputAt(slotToClaim + w.delay)
	if !ok {
		w.logger.Warn("missing PoT checkpoint for slot authoring delay, skipping slot", "slot", slotToClaim)
		return
	}
	futurePotOutput, ok := potOutputAt(slotToClaim + 2*w.delay)
	if !ok {
		futurePotOutput = potOutput
	}

	block, err := w.builder.Build(ctx, slotToClaim, potOutput, futurePotOutput, currentTimeMillis())
	switch {
	case err == ErrNoSolution:
		return
	case err == ErrFailedToSeal:
		w.logger.Warn("failed to seal block, skipping slot", "slot", slotToClaim)
		return
	case err != nil:
		w.logger.Error("block assembly failed, skipping slot", "slot", slotToClaim, "error", err.Error())
		return
	}

	if err := w.sink.SubmitBlock(block); err != nil {
		w.logger.Error("submitting sealed block failed", "slot", slotToClaim, "error", err.Error())
	}
}
