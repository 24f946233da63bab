package pot

import (
	"testing"

	"github.com/ab-network/subspace-core/primitives"
)

func TestTryGetCheckpointsMissByDefault(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.TryGetCheckpoints(NumCheckpoints, primitives.PotSeed{}); ok {
		t.Fatal("expected a miss before any Verify call")
	}
}

func TestVerifyThenTryGetCheckpointsHits(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}

	var seed primitives.PotSeed
	seed[0] = 42
	checkpoints, err := computeCheckpoints(NumCheckpoints, seed)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := v.Verify(NumCheckpoints, seed, checkpoints)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Verify should succeed against correctly recomputed checkpoints")
	}

	cached, hit := v.TryGetCheckpoints(NumCheckpoints, seed)
	if !hit {
		t.Fatal("expected a cache hit after a successful Verify")
	}
	if cached.Output() != checkpoints.Output() {
		t.Fatal("cached checkpoints should match the verified ones")
	}
}

func TestVerifyRejectsWrongCheckpoints(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}

	var seed primitives.PotSeed
	wrong := make(primitives.PotCheckpoints, NumCheckpoints)

	ok, err := v.Verify(NumCheckpoints, seed, wrong)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Verify should reject all-zero checkpoints that don't match the real chain")
	}
	if _, hit := v.TryGetCheckpoints(NumCheckpoints, seed); hit {
		t.Fatal("a failed Verify must not populate the cache")
	}
}

func TestVerifyRejectsWrongLength(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := v.Verify(NumCheckpoints, primitives.PotSeed{}, primitives.PotCheckpoints{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Verify should reject a checkpoints slice of the wrong length")
	}
}

func TestEvaluatorSeedsVerifierCache(t *testing.T) {
	v, err := NewVerifier(16)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEvaluator(v)

	var seed primitives.PotSeed
	seed[0] = 5
	checkpoints, err := e.Evaluate(NumCheckpoints, seed)
	if err != nil {
		t.Fatal(err)
	}

	cached, hit := v.TryGetCheckpoints(NumCheckpoints, seed)
	if !hit {
		t.Fatal("Evaluate should populate the verifier's cache")
	}
	if cached.Output() != checkpoints.Output() {
		t.Fatal("cached checkpoints should match what Evaluate returned")
	}
}
