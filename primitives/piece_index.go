package primitives

// SegmentIndex identifies a segment of archival history, strictly
// monotonically assigned by the archiver.
type SegmentIndex uint64

// PieceIndex identifies a single piece across all of archival history,
// monotonically assigned by (SegmentIndex, position-in-segment).
type PieceIndex uint64

// BlockNumber identifies a block by height.
type BlockNumber uint64

// SlotNumber identifies a PoT slot.
type SlotNumber uint64

// ShardIndex identifies one shard of the execution layer (out of scope
// beyond this identifier: the executor itself is an external collaborator).
type ShardIndex uint32

// DerivePieceIndex computes the piece index of the piece at position
// within the segment identified by segmentIndex. Positions 0..NumRawRecords
// are source pieces; NumRawRecords..2*NumRawRecords are parity pieces.
func DerivePieceIndex(segmentIndex SegmentIndex, position int) PieceIndex {
	return PieceIndex(uint64(segmentIndex)*2*NumRawRecords + uint64(position))
}

// SegmentIndexOf returns the segment a piece index belongs to.
func (p PieceIndex) SegmentIndexOf() SegmentIndex {
	return SegmentIndex(uint64(p) / (2 * NumRawRecords))
}

// PositionInSegment returns a piece index's position within its segment.
func (p PieceIndex) PositionInSegment() int {
	return int(uint64(p) % (2 * NumRawRecords))
}

// IsSource reports whether the piece at this index is a source piece
// (as opposed to a parity piece) within its segment.
func (p PieceIndex) IsSource() bool {
	return p.PositionInSegment() < NumRawRecords
}
