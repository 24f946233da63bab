package archiving

import (
	"errors"
	"fmt"

	"github.com/ab-network/subspace-core/erasurecoding"
	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

// ErrBlockTooLarge is returned when a single block's encoded bytes alone
// exceed a segment's worth of source data, which the simple accumulate-then-
// split scheme below can't span.
var ErrBlockTooLarge = errors.New("archiving: block exceeds segment capacity")

// Archiver accumulates raw block bytes and emits fixed-size archived
// segments once enough bytes have arrived to fill one. It is not safe for
// concurrent use from multiple goroutines; callers serialize calls to
// AddBlock themselves (mirroring the single-writer accumulation loop the
// block builder around it already uses).
type Archiver struct {
	pending []byte

	segmentCodec *erasurecoding.Codec
	chunkCodec   *erasurecoding.Codec

	nextSegmentIndex      primitives.SegmentIndex
	prevSegmentHeaderHash merkletree.Hash

	lastArchivedBlock primitives.LastArchivedBlock
}

// NewArchiver builds an empty archiver. genesisPrevHash seeds
// prev_segment_header_hash for the first emitted segment (the all-zero hash
// for a fresh chain).
func NewArchiver(genesisPrevHash merkletree.Hash) (*Archiver, error) {
	segmentCodec, err := erasurecoding.New(primitives.NumRawRecords, primitives.NumRawRecords)
	if err != nil {
		return nil, fmt.Errorf("archiving: building segment codec: %w", err)
	}
	chunkCodec, err := NewChunkCodec()
	if err != nil {
		return nil, fmt.Errorf("archiving: building chunk codec: %w", err)
	}
	return &Archiver{
		segmentCodec:          segmentCodec,
		chunkCodec:            chunkCodec,
		prevSegmentHeaderHash: genesisPrevHash,
	}, nil
}

// AddBlock feeds one block's encoded bytes into the pending buffer,
// returning the segment that became full as a result, if any. A block
// larger than RecordedHistorySegmentSize is rejected with ErrBlockTooLarge,
// so one call completes at most one segment. The block becomes the last
// archived block, with archived_progress set to the number of bytes left
// pending after any completed segment.
func (a *Archiver) AddBlock(blockNumber primitives.BlockNumber, blockBytes []byte) ([]ArchivedSegment, error) {
	if len(blockBytes) > primitives.RecordedHistorySegmentSize {
		return nil, ErrBlockTooLarge
	}

	a.pending = append(a.pending, blockBytes...)
	a.lastArchivedBlock = primitives.LastArchivedBlock{
		Number:           blockNumber,
		ArchivedProgress: uint32(len(a.pending) % primitives.RecordedHistorySegmentSize),
	}

	var segments []ArchivedSegment
	for len(a.pending) >= primitives.RecordedHistorySegmentSize {
		segmentBytes := a.pending[:primitives.RecordedHistorySegmentSize]
		a.pending = append([]byte(nil), a.pending[primitives.RecordedHistorySegmentSize:]...)

		segment, err := a.archiveSegment(segmentBytes)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

// archiveSegment turns exactly RecordedHistorySegmentSize bytes of pending
// data into one ArchivedSegment: source records, erasure-extended parity
// records, per-record roots, the segment's balanced Merkle tree, and the
// resulting pieces and header.
func (a *Archiver) archiveSegment(segmentBytes []byte) (ArchivedSegment, error) {
	sourceRecords := make([]*primitives.Record, primitives.NumRawRecords)
	for i := range sourceRecords {
		offset := i * primitives.RecordSize
		record, err := primitives.RecordFromBytes(segmentBytes[offset : offset+primitives.RecordSize])
		if err != nil {
			return ArchivedSegment{}, err
		}
		sourceRecords[i] = record
	}

	parityRecords := make([]*primitives.Record, primitives.NumRawRecords)
	sourceShards := make([][]byte, primitives.NumRawRecords)
	parityShards := make([][]byte, primitives.NumRawRecords)
	for i := range parityRecords {
		parityRecords[i] = new(primitives.Record)
		sourceShards[i] = sourceRecords[i].Bytes()
		parityShards[i] = parityRecords[i].Bytes()
	}
	if err := a.segmentCodec.Extend(sourceShards, parityShards); err != nil {
		return ArchivedSegment{}, fmt.Errorf("archiving: extending records to parity: %w", err)
	}

	allRecords := make([]*primitives.Record, 0, NumPiecesInSegment)
	allRecords = append(allRecords, sourceRecords...)
	allRecords = append(allRecords, parityRecords...)

	recordRoots := make([]merkletree.Hash, NumPiecesInSegment)
	parityChunksRoots := make([]merkletree.Hash, NumPiecesInSegment)
	for i, record := range allRecords {
		recordRoot, parityChunksRoot, err := ComputeRecordRoot(a.chunkCodec, record)
		if err != nil {
			return ArchivedSegment{}, fmt.Errorf("archiving: computing record root: %w", err)
		}
		recordRoots[i] = recordRoot
		parityChunksRoots[i] = parityChunksRoot
	}

	segmentTree, err := merkletree.NewBalanced(recordRoots)
	if err != nil {
		return ArchivedSegment{}, fmt.Errorf("archiving: building segment tree: %w", err)
	}

	pieces := make([]primitives.Piece, NumPiecesInSegment)
	for i, record := range allRecords {
		proof, err := segmentTree.Proof(i)
		if err != nil {
			return ArchivedSegment{}, fmt.Errorf("archiving: deriving piece proof: %w", err)
		}

		b := primitives.NewPieceBuilder()
		b.SetRecord(record)
		b.SetRecordRoot(recordRoots[i])
		b.SetParityChunksRoot(parityChunksRoots[i])
		if err := b.SetProof(proof); err != nil {
			return ArchivedSegment{}, fmt.Errorf("archiving: setting piece proof: %w", err)
		}
		pieces[i] = b.Finish()
	}

	header := primitives.SegmentHeader{
		SegmentIndex:          a.nextSegmentIndex,
		SegmentRoot:           segmentTree.Root(),
		PrevSegmentHeaderHash: a.prevSegmentHeaderHash,
		LastArchivedBlock:     a.lastArchivedBlock,
	}

	a.nextSegmentIndex++
	a.prevSegmentHeaderHash = header.Hash()

	return ArchivedSegment{Pieces: pieces, Header: header}, nil
}
