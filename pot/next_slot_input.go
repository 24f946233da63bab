package pot

import "github.com/ab-network/subspace-core/primitives"

// NextSlotInput is everything needed to evaluate or verify the next slot:
// its number, the iteration count in effect for it, and the seed its hash
// chain starts from.
type NextSlotInput struct {
	Slot           primitives.SlotNumber
	SlotIterations uint32
	Seed           primitives.PotSeed
}

// DeriveNextSlotInput computes the input for the slot following parentSlot,
// given the parent's output and the iteration count that was in effect at
// or before the parent (baseSlotIterations) plus any scheduled parameters
// change. A change takes effect starting at its own Slot; if it lands
// exactly on the next slot, its entropy is mixed into the seed, otherwise
// the seed carries over from the parent output unchanged.
func DeriveNextSlotInput(baseSlotIterations uint32, parentSlot primitives.SlotNumber, parentOutput primitives.PotOutput, change *primitives.PotParametersChange) NextSlotInput {
	nextSlot := parentSlot + 1

	if change != nil && change.Slot <= nextSlot {
		seed := parentOutput.Seed()
		if change.Slot == nextSlot {
			seed = parentOutput.SeedWithEntropy(change.Entropy)
		}
		return NextSlotInput{
			Slot:           nextSlot,
			SlotIterations: change.SlotIterations,
			Seed:           seed,
		}
	}

	return NextSlotInput{
		Slot:           nextSlot,
		SlotIterations: baseSlotIterations,
		Seed:           parentOutput.Seed(),
	}
}
