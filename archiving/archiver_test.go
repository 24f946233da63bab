package archiving

import (
	"testing"

	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

func fillerBytes(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

func TestAddBlockEmitsOneSegmentExactlyAtCapacity(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	segments, err := a.AddBlock(1, fillerBytes(primitives.RecordedHistorySegmentSize, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if len(segments[0].Pieces) != NumPiecesInSegment {
		t.Fatalf("got %d pieces, want %d", len(segments[0].Pieces), NumPiecesInSegment)
	}
	if segments[0].Header.SegmentIndex != 0 {
		t.Fatalf("SegmentIndex = %d, want 0", segments[0].Header.SegmentIndex)
	}
}

func TestAddBlockAccumulatesAcrossCalls(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	half := primitives.RecordedHistorySegmentSize / 2
	segments, err := a.AddBlock(1, fillerBytes(half, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 0 {
		t.Fatalf("got %d segments after half a segment's worth of bytes, want 0", len(segments))
	}

	segments, err = a.AddBlock(2, fillerBytes(half, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments after the second half arrived, want 1", len(segments))
	}
}

func TestSegmentIndexIsMonotonic(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	var allHeaders []primitives.SegmentHeader
	for i := 0; i < 3; i++ {
		segments, err := a.AddBlock(primitives.BlockNumber(i), fillerBytes(primitives.RecordedHistorySegmentSize, byte(i)))
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range segments {
			allHeaders = append(allHeaders, s.Header)
		}
	}

	if len(allHeaders) != 3 {
		t.Fatalf("got %d headers, want 3", len(allHeaders))
	}
	for i, h := range allHeaders {
		if h.SegmentIndex != primitives.SegmentIndex(i) {
			t.Fatalf("header %d has SegmentIndex %d", i, h.SegmentIndex)
		}
	}
}

func TestSegmentHeadersChainByHash(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	var headers []primitives.SegmentHeader
	for i := 0; i < 2; i++ {
		segments, err := a.AddBlock(primitives.BlockNumber(i), fillerBytes(primitives.RecordedHistorySegmentSize, byte(i)))
		if err != nil {
			t.Fatal(err)
		}
		headers = append(headers, segments[0].Header)
	}

	if headers[1].PrevSegmentHeaderHash != headers[0].Hash() {
		t.Fatal("second header should chain from the first header's hash")
	}
}

func TestPiecesVerifyAgainstSegmentRoot(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	segments, err := a.AddBlock(1, fillerBytes(primitives.RecordedHistorySegmentSize, 7))
	if err != nil {
		t.Fatal(err)
	}
	segment := segments[0]

	for i, piece := range segment.Pieces {
		if !merkletree.VerifyBalanced(segment.Header.SegmentRoot, piece.Proof(), i, piece.RecordRoot()) {
			t.Fatalf("piece %d failed to verify against the segment root", i)
		}
	}
}

func TestSourcePiecesPrecedeParityPieces(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}

	segments, err := a.AddBlock(1, fillerBytes(primitives.RecordedHistorySegmentSize, 3))
	if err != nil {
		t.Fatal(err)
	}
	segment := segments[0]

	sourceRecord, err := segment.Pieces[0].Record()
	if err != nil {
		t.Fatal(err)
	}
	want, err := primitives.RecordFromBytes(fillerBytes(primitives.RecordedHistorySegmentSize, 3)[:primitives.RecordSize])
	if err != nil {
		t.Fatal(err)
	}
	if sourceRecord.Bytes()[0] != want.Bytes()[0] {
		t.Fatal("first piece's record should start with the raw source bytes")
	}
}

func TestAddBlockRejectsOversizedBlock(t *testing.T) {
	a, err := NewArchiver(merkletree.Hash{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.AddBlock(1, fillerBytes(primitives.RecordedHistorySegmentSize+1, 0))
	if err != ErrBlockTooLarge {
		t.Fatalf("expected ErrBlockTooLarge, got %v", err)
	}
}
