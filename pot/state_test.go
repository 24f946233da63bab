package pot

import (
	"testing"

	"github.com/ab-network/subspace-core/primitives"
)

const testIterations = NumCheckpoints * 4

func TestStateTryExtendAdvancesOnMatch(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEvaluator(v)

	var seedA primitives.PotSeed
	seedA[0] = 1
	initial := NextSlotInput{Slot: 1, SlotIterations: testIterations, Seed: seedA}
	s := NewState(initial, nil, v)

	checkpoints1, err := e.Evaluate(testIterations, seedA)
	if err != nil {
		t.Fatal(err)
	}
	output1 := checkpoints1.Output()

	got, ok := s.TryExtend(initial, 1, output1, false, nil)
	if !ok {
		t.Fatal("TryExtend should succeed when expected matches the stored tip")
	}
	want := DeriveNextSlotInput(testIterations, 1, output1, nil)
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if s.NextSlotInput() != got {
		t.Fatal("NextSlotInput should reflect the advanced tip")
	}
}

func TestStateTryExtendRejectsStaleExpectation(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}

	initial := NextSlotInput{Slot: 1, SlotIterations: testIterations}
	s := NewState(initial, nil, v)

	stale := NextSlotInput{Slot: 99}
	got, ok := s.TryExtend(stale, 1, primitives.PotOutput{}, false, nil)
	if ok {
		t.Fatal("TryExtend should fail when expected doesn't match the stored tip")
	}
	if got != initial {
		t.Fatal("a rejected TryExtend should return the actual current tip unchanged")
	}
}

func TestStateSetKnownGoodOutputNoChange(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}

	var seed2 primitives.PotSeed
	seed2[0] = 2
	initial := NextSlotInput{Slot: 2, SlotIterations: testIterations, Seed: seed2}
	s := NewState(initial, nil, v)

	var output2 primitives.PotOutput
	output2[0] = 3

	// Drive the tip forward once so the second identical call is a no-op.
	_, _, outcome := s.SetKnownGoodOutput(2, output2, nil)
	if outcome == NoChange {
		t.Fatal("the first SetKnownGoodOutput call should change the tip")
	}

	_, _, outcome = s.SetKnownGoodOutput(2, output2, nil)
	if outcome != NoChange {
		t.Fatalf("outcome = %v, want NoChange", outcome)
	}
}

func TestStateSetKnownGoodOutputExtension(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEvaluator(v)

	var seed2 primitives.PotSeed
	seed2[0] = 4
	initial := NextSlotInput{Slot: 2, SlotIterations: testIterations, Seed: seed2}
	s := NewState(initial, nil, v)

	checkpoints2, err := e.Evaluate(testIterations, seed2)
	if err != nil {
		t.Fatal(err)
	}
	output2 := checkpoints2.Output()

	_, _, outcome := s.SetKnownGoodOutput(2, output2, nil)
	if outcome != Extension {
		t.Fatalf("outcome = %v, want Extension", outcome)
	}
}

func TestStateSetKnownGoodOutputReorgWhenUncached(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}

	var seed2 primitives.PotSeed
	seed2[0] = 5
	initial := NextSlotInput{Slot: 2, SlotIterations: testIterations, Seed: seed2}
	s := NewState(initial, nil, v)

	var unrelatedOutput primitives.PotOutput
	unrelatedOutput[0] = 0xFF

	_, _, outcome := s.SetKnownGoodOutput(2, unrelatedOutput, nil)
	if outcome != Reorg {
		t.Fatalf("outcome = %v, want Reorg", outcome)
	}
}
