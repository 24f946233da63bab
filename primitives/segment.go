package primitives

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/merkletree"
	"lukechampine.com/blake3"
)

// LastArchivedBlock records how far into a block the archiver had
// progressed when a segment header was produced: a segment need not end on
// a block boundary.
type LastArchivedBlock struct {
	Number           BlockNumber
	ArchivedProgress uint32
}

// SegmentHeader commits to one archived segment: its index, the root of
// the balanced Merkle tree over its 2*NumRawRecords per-record roots, a
// hash-chain link to the previous segment header, and the position in the
// block stream the segment's data ends at.
type SegmentHeader struct {
	SegmentIndex          SegmentIndex
	SegmentRoot           merkletree.Hash
	PrevSegmentHeaderHash merkletree.Hash
	LastArchivedBlock     LastArchivedBlock
}

// Hash computes the segment header's own hash, used as the
// PrevSegmentHeaderHash of the next segment header in the chain.
func (h SegmentHeader) Hash() merkletree.Hash {
	hasher := blake3.New(merkletree.HashSize, nil)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(h.SegmentIndex))
	hasher.Write(buf[:])
	hasher.Write(h.SegmentRoot[:])
	hasher.Write(h.PrevSegmentHeaderHash[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(h.LastArchivedBlock.Number))
	hasher.Write(buf[:])
	var buf4 [4]byte
	binary.LittleEndian.PutUint32(buf4[:], h.LastArchivedBlock.ArchivedProgress)
	hasher.Write(buf4[:])

	var out merkletree.Hash
	copy(out[:], hasher.Sum(nil))
	return out
}
