package primitives

import "testing"

func TestDerivePieceIndexRoundTrip(t *testing.T) {
	for _, segIdx := range []SegmentIndex{0, 1, 7, 1000} {
		for pos := 0; pos < 2*NumRawRecords; pos++ {
			idx := DerivePieceIndex(segIdx, pos)
			if got := idx.SegmentIndexOf(); got != segIdx {
				t.Fatalf("segIdx=%d pos=%d: SegmentIndexOf = %d", segIdx, pos, got)
			}
			if got := idx.PositionInSegment(); got != pos {
				t.Fatalf("segIdx=%d pos=%d: PositionInSegment = %d", segIdx, pos, got)
			}
			wantSource := pos < NumRawRecords
			if idx.IsSource() != wantSource {
				t.Fatalf("segIdx=%d pos=%d: IsSource = %v, want %v", segIdx, pos, idx.IsSource(), wantSource)
			}
		}
	}
}

func TestDerivePieceIndexIsMonotonic(t *testing.T) {
	prev := DerivePieceIndex(0, 0)
	for segIdx := SegmentIndex(0); segIdx < 5; segIdx++ {
		for pos := 0; pos < 2*NumRawRecords; pos++ {
			if segIdx == 0 && pos == 0 {
				continue
			}
			cur := DerivePieceIndex(segIdx, pos)
			if cur <= prev {
				t.Fatalf("piece index not monotonic at segIdx=%d pos=%d", segIdx, pos)
			}
			prev = cur
		}
	}
}
