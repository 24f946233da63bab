package primitives

import (
	"bytes"
	"testing"

	"github.com/ab-network/subspace-core/merkletree"
)

func TestPieceBuilderRoundTrip(t *testing.T) {
	var record Record
	var c Chunk
	c[1] = 0x42
	record.SetChunk(0, c)
	recordRoot, err := record.Root()
	if err != nil {
		t.Fatal(err)
	}
	var parityRoot merkletree.Hash
	parityRoot[0] = 0x99
	proof := make([]merkletree.Hash, SegmentProofDepth)
	for i := range proof {
		proof[i][0] = byte(i + 1)
	}

	b := NewPieceBuilder()
	b.SetRecord(&record)
	b.SetRecordRoot(recordRoot)
	b.SetParityChunksRoot(parityRoot)
	if err := b.SetProof(proof); err != nil {
		t.Fatal(err)
	}
	piece := b.Finish()

	if len(piece.Bytes()) != PieceSize {
		t.Fatalf("piece has %d bytes, want %d", len(piece.Bytes()), PieceSize)
	}

	gotRecord, err := piece.Record()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotRecord.Bytes(), record.Bytes()) {
		t.Fatal("record round trip mismatch")
	}
	if piece.RecordRoot() != recordRoot {
		t.Fatal("record root round trip mismatch")
	}
	if piece.ParityChunksRoot() != parityRoot {
		t.Fatal("parity chunks root round trip mismatch")
	}
	gotProof := piece.Proof()
	if len(gotProof) != len(proof) {
		t.Fatalf("got %d proof entries, want %d", len(gotProof), len(proof))
	}
	for i := range proof {
		if gotProof[i] != proof[i] {
			t.Fatalf("proof entry %d mismatch", i)
		}
	}
}

func TestPieceCloneSharesStorage(t *testing.T) {
	b := NewPieceBuilder()
	piece := b.Finish()
	clone := piece.Clone()

	if !bytes.Equal(piece.Bytes(), clone.Bytes()) {
		t.Fatal("clone should read the same bytes")
	}
}

func TestPieceFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := PieceFromBytes(make([]byte, PieceSize-1)); err != ErrWrongByteLength {
		t.Fatalf("expected ErrWrongByteLength, got %v", err)
	}
}

func TestPieceBuilderRejectsWrongProofLength(t *testing.T) {
	b := NewPieceBuilder()
	if err := b.SetProof(make([]merkletree.Hash, SegmentProofDepth-1)); err != ErrWrongByteLength {
		t.Fatalf("expected ErrWrongByteLength, got %v", err)
	}
}
