package pot

import (
	"sync"

	"github.com/ab-network/subspace-core/primitives"
)

// SetOutcome classifies the effect of State.SetKnownGoodOutput.
type SetOutcome int

const (
	// NoChange means the imported tip already matched the local one.
	NoChange SetOutcome = iota
	// Extension means the imported tip is reachable from the prior local
	// tip purely by replaying cached checkpoints.
	Extension
	// Reorg means the imported tip could not be reached from the prior
	// local tip via the checkpoint cache: the PoT chain itself changed.
	Reorg
)

type innerState struct {
	nextSlotInput    NextSlotInput
	parametersChange *primitives.PotParametersChange
}

// update advances state by deriving the slot after (slot, output), then
// fast-forwarding as far as the verifier's cached checkpoints allow.
func (s innerState) update(slot primitives.SlotNumber, output primitives.PotOutput, updateChange bool, newChange *primitives.PotParametersChange, verifier *Verifier) innerState {
	if updateChange {
		s.parametersChange = newChange
	}

	for {
		s.nextSlotInput = DeriveNextSlotInput(s.nextSlotInput.SlotIterations, slot, output, s.parametersChange)

		checkpoints, ok := verifier.TryGetCheckpoints(s.nextSlotInput.SlotIterations, s.nextSlotInput.Seed)
		if !ok {
			break
		}
		slot = s.nextSlotInput.Slot
		output = checkpoints.Output()
	}

	return s
}

// State tracks the canonical tip of the proof-of-time chain: the input the
// next slot must be evaluated against, and any scheduled parameters
// change.
type State struct {
	mu       sync.Mutex
	inner    innerState
	verifier *Verifier
}

// NewState builds a State seeded with the given next slot input and
// scheduled change (nil if none is pending).
func NewState(nextSlotInput NextSlotInput, change *primitives.PotParametersChange, verifier *Verifier) *State {
	return &State{
		inner:    innerState{nextSlotInput: nextSlotInput, parametersChange: change},
		verifier: verifier,
	}
}

// NextSlotInput returns the input the next slot must be evaluated against.
func (s *State) NextSlotInput() NextSlotInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.nextSlotInput
}

// TryExtend advances the chain by one slot if expected matches the
// currently stored next slot input; otherwise it leaves state untouched
// and returns the actual current value along with false.
func (s *State) TryExtend(expected NextSlotInput, bestSlot primitives.SlotNumber, bestOutput primitives.PotOutput, updateChange bool, newChange *primitives.PotParametersChange) (NextSlotInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expected != s.inner.nextSlotInput {
		return s.inner.nextSlotInput, false
	}

	s.inner = s.inner.update(bestSlot, bestOutput, updateChange, newChange, s.verifier)
	return s.inner.nextSlotInput, true
}

// SetKnownGoodOutput overwrites state to reflect that (slot, output,
// change) is canonical — typically supplied by an imported best block —
// and classifies the resulting change in local tip.
func (s *State) SetKnownGoodOutput(slot primitives.SlotNumber, output primitives.PotOutput, change *primitives.PotParametersChange) (from, to NextSlotInput, outcome SetOutcome) {
	s.mu.Lock()
	previous := s.inner
	next := previous.update(slot, output, true, change, s.verifier)
	s.inner = next
	s.mu.Unlock()

	if previous.nextSlotInput == next.nextSlotInput {
		return previous.nextSlotInput, next.nextSlotInput, NoChange
	}

	if previous.nextSlotInput.Slot < next.nextSlotInput.Slot {
		slotIterations := previous.nextSlotInput.SlotIterations
		seed := previous.nextSlotInput.Seed

		for cur := previous.nextSlotInput.Slot; cur < next.nextSlotInput.Slot; cur++ {
			checkpoints, ok := s.verifier.TryGetCheckpoints(slotIterations, seed)
			if !ok {
				break
			}

			derived := DeriveNextSlotInput(slotIterations, cur, checkpoints.Output(), change)
			nextSlot := cur + 1
			slotIterations = derived.SlotIterations
			seed = derived.Seed

			if nextSlot == next.nextSlotInput.Slot &&
				slotIterations == next.nextSlotInput.SlotIterations &&
				seed == next.nextSlotInput.Seed {
				return previous.nextSlotInput, next.nextSlotInput, Extension
			}
		}
	}

	return previous.nextSlotInput, next.nextSlotInput, Reorg
}
