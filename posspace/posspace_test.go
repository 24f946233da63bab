package posspace

import (
	"bytes"
	"testing"
)

func testSeed(b byte) [32]byte {
	var seed [32]byte
	seed[0] = b
	seed[1] = 0xAB
	return seed
}

func TestCreateRejectsOutOfRangeK(t *testing.T) {
	if _, err := Create(testSeed(1), 10); err != ErrInvalidK {
		t.Fatalf("expected ErrInvalidK for k=10, got %v", err)
	}
	if _, err := Create(testSeed(1), 30); err != ErrInvalidK {
		t.Fatalf("expected ErrInvalidK for k=30, got %v", err)
	}
}

func TestCreateBuildsAllSevenTables(t *testing.T) {
	tables, err := Create(testSeed(2), MinK)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables.layers) != NumTables {
		t.Fatalf("got %d layers, want %d", len(tables.layers), NumTables)
	}
	if len(tables.layers[0]) != 1<<MinK {
		t.Fatalf("table 1 has %d entries, want %d", len(tables.layers[0]), 1<<MinK)
	}
	for i, layer := range tables.layers {
		for _, e := range layer {
			if len(e.xs) != 1<<i {
				t.Fatalf("layer %d entry has %d pre-images, want %d", i, len(e.xs), 1<<i)
			}
		}
	}
}

func TestCreateIsDeterministic(t *testing.T) {
	a, err := Create(testSeed(3), MinK)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Create(testSeed(3), MinK)
	if err != nil {
		t.Fatal(err)
	}
	pa, pb := a.CreateProofs(), b.CreateProofs()
	if pa.FoundProofs != pb.FoundProofs {
		t.Fatal("repeated Create from the same seed produced different s-bucket occupancy")
	}
	for i := range pa.ProofBytes {
		if !bytes.Equal(pa.ProofBytes[i], pb.ProofBytes[i]) {
			t.Fatalf("proof %d differs between identical runs", i)
		}
	}
}

func TestCreateParallelMatchesCreate(t *testing.T) {
	seed := testSeed(4)
	seq, err := Create(seed, MinK)
	if err != nil {
		t.Fatal(err)
	}
	par, err := CreateParallel(seed, MinK)
	if err != nil {
		t.Fatal(err)
	}

	ps, pp := seq.CreateProofs(), par.CreateProofs()
	if ps.FoundProofs != pp.FoundProofs {
		t.Fatal("CreateParallel's s-bucket occupancy differs from sequential Create")
	}
	for i := range ps.ProofBytes {
		if !bytes.Equal(ps.ProofBytes[i], pp.ProofBytes[i]) {
			t.Fatalf("proof %d differs between sequential and parallel construction", i)
		}
	}
}

func TestFreshProofVerifiesOK(t *testing.T) {
	seed := testSeed(5)
	tables, err := Create(seed, MinK)
	if err != nil {
		t.Fatal(err)
	}
	proofs := tables.CreateProofs()
	if len(proofs.ProofBytes) == 0 {
		t.Skip("no s-buckets produced a proof for this seed at this k; matching rule is probabilistic")
	}

	sBucket := -1
	for i := 0; i < NumSBuckets; i++ {
		if bitSet(proofs.FoundProofs[:], i) {
			sBucket = i
			break
		}
	}
	if sBucket < 0 {
		t.Fatal("FoundProofs bitmap set but no bit found")
	}

	ok, err := VerifyOnlyRaw(seed, MinK, uint32(sBucket), proofs.ProofBytes[0])
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("a freshly produced proof should verify against its own s-bucket as challenge")
	}
}

func TestTamperedProofFailsVerification(t *testing.T) {
	seed := testSeed(6)
	tables, err := Create(seed, MinK)
	if err != nil {
		t.Fatal(err)
	}
	proofs := tables.CreateProofs()
	if len(proofs.ProofBytes) == 0 {
		t.Skip("no s-buckets produced a proof for this seed at this k")
	}

	sBucket := -1
	for i := 0; i < NumSBuckets; i++ {
		if bitSet(proofs.FoundProofs[:], i) {
			sBucket = i
			break
		}
	}

	tampered := make([]byte, len(proofs.ProofBytes[0]))
	copy(tampered, proofs.ProofBytes[0])
	tampered[0] ^= 0xFF

	ok, err := VerifyOnlyRaw(seed, MinK, uint32(sBucket), tampered)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("a corrupted proof must not verify")
	}
}

func TestVerifyOnlyRawRejectsWrongProofLength(t *testing.T) {
	if _, err := VerifyOnlyRaw(testSeed(7), MinK, 0, []byte{1, 2, 3}); err != ErrMalformedProof {
		t.Fatalf("expected ErrMalformedProof, got %v", err)
	}
}

func TestFindProofRawMatchesCreateProofsForChallenge(t *testing.T) {
	seed := testSeed(8)
	tables, err := Create(seed, MinK)
	if err != nil {
		t.Fatal(err)
	}
	proofs := tables.CreateProofs()
	if len(proofs.ProofBytes) == 0 {
		t.Skip("no s-buckets produced a proof for this seed at this k")
	}

	sBucket := -1
	for i := 0; i < NumSBuckets; i++ {
		if bitSet(proofs.FoundProofs[:], i) {
			sBucket = i
			break
		}
	}

	found := tables.FindProofRaw(uint32(sBucket))
	if len(found) == 0 {
		t.Fatal("FindProofRaw should find at least the proof CreateProofs already collected")
	}
}
