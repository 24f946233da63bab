// Package reconstructor rebuilds the full set of pieces for a segment from
// any half of them, using the same erasure coding the archiver used to
// produce the missing half in the first place.
package reconstructor

import (
	"errors"
	"fmt"

	"github.com/ab-network/subspace-core/archiving"
	"github.com/ab-network/subspace-core/erasurecoding"
	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

// ErrNotEnoughShards is returned when fewer than NumPiecesInSegment pieces
// (present or absent) are supplied: the caller must pass a full-length
// slice with holes, not a truncated one.
var ErrNotEnoughShards = errors.New("reconstructor: not enough shards")

// ErrIncorrectPiecePosition is returned when a single-piece request names a
// position outside the segment.
var ErrIncorrectPiecePosition = errors.New("reconstructor: incorrect piece position")

// PiecesReconstructor rebuilds missing pieces of a segment from the pieces
// that remain.
type PiecesReconstructor struct {
	segmentCodec *erasurecoding.Codec
	chunkCodec   *erasurecoding.Codec
}

// New builds a reconstructor using the same shard ratios the archiver uses:
// NumRawRecords source records to NumRawRecords parity records at the
// segment level, and NumChunks source chunks to NumChunks parity chunks at
// the per-record level.
func New() (*PiecesReconstructor, error) {
	segmentCodec, err := erasurecoding.New(primitives.NumRawRecords, primitives.NumRawRecords)
	if err != nil {
		return nil, fmt.Errorf("reconstructor: building segment codec: %w", err)
	}
	chunkCodec, err := archiving.NewChunkCodec()
	if err != nil {
		return nil, fmt.Errorf("reconstructor: building chunk codec: %w", err)
	}
	return &PiecesReconstructor{segmentCodec: segmentCodec, chunkCodec: chunkCodec}, nil
}

// reconstructShards recovers every record in the segment, recomputes roots
// for positions that had to be recovered, rebuilds the segment's balanced
// Merkle tree, and redistributes every piece's proof.
func (r *PiecesReconstructor) reconstructShards(segmentPieces []*primitives.Piece) ([]primitives.Piece, error) {
	if len(segmentPieces) < archiving.NumPiecesInSegment {
		return nil, ErrNotEnoughShards
	}

	records := make([]*primitives.Record, archiving.NumPiecesInSegment)
	for i := range records {
		records[i] = new(primitives.Record)
	}

	sourceShards := make([]erasurecoding.RecoveryShard, primitives.NumRawRecords)
	parityShards := make([]erasurecoding.RecoveryShard, primitives.NumRawRecords)

	for i := 0; i < primitives.NumRawRecords; i++ {
		if err := fillRecoveryShard(&sourceShards[i], segmentPieces[i], records[i]); err != nil {
			return nil, err
		}
	}
	for i := 0; i < primitives.NumRawRecords; i++ {
		pos := primitives.NumRawRecords + i
		if err := fillRecoveryShard(&parityShards[i], segmentPieces[pos], records[pos]); err != nil {
			return nil, err
		}
	}

	if err := r.segmentCodec.Recover(sourceShards, parityShards); err != nil {
		return nil, fmt.Errorf("reconstructor: recovering records: %w", err)
	}

	recordRoots := make([]merkletree.Hash, archiving.NumPiecesInSegment)
	parityChunksRoots := make([]merkletree.Hash, archiving.NumPiecesInSegment)
	for i, inputPiece := range segmentPieces {
		if inputPiece != nil {
			recordRoots[i] = inputPiece.RecordRoot()
			parityChunksRoots[i] = inputPiece.ParityChunksRoot()
			continue
		}
		recordRoot, parityChunksRoot, err := archiving.ComputeRecordRoot(r.chunkCodec, records[i])
		if err != nil {
			return nil, fmt.Errorf("reconstructor: computing record root for position %d: %w", i, err)
		}
		recordRoots[i] = recordRoot
		parityChunksRoots[i] = parityChunksRoot
	}

	segmentTree, err := merkletree.NewBalanced(recordRoots)
	if err != nil {
		return nil, fmt.Errorf("reconstructor: rebuilding segment tree: %w", err)
	}

	pieces := make([]primitives.Piece, archiving.NumPiecesInSegment)
	for i, record := range records {
		proof, err := segmentTree.Proof(i)
		if err != nil {
			return nil, fmt.Errorf("reconstructor: deriving piece proof: %w", err)
		}
		b := primitives.NewPieceBuilder()
		b.SetRecord(record)
		b.SetRecordRoot(recordRoots[i])
		b.SetParityChunksRoot(parityChunksRoots[i])
		if err := b.SetProof(proof); err != nil {
			return nil, fmt.Errorf("reconstructor: setting piece proof: %w", err)
		}
		pieces[i] = b.Finish()
	}

	return pieces, nil
}

// fillRecoveryShard sets up one RecoveryShard slot: Present with the input
// piece's record bytes, or MissingRecover backed by out's storage.
func fillRecoveryShard(shard *erasurecoding.RecoveryShard, inputPiece *primitives.Piece, out *primitives.Record) error {
	if inputPiece == nil {
		shard.State = erasurecoding.MissingRecover
		shard.Data = out.Bytes()
		return nil
	}
	record, err := inputPiece.Record()
	if err != nil {
		return err
	}
	*out = *record
	shard.State = erasurecoding.Present
	shard.Data = out.Bytes()
	return nil
}

// ReconstructSegment returns every piece of a segment given any
// NumPiecesInSegment-length slice with nil holes for missing pieces (any
// half of all pieces present is enough; more is fine too).
func (r *PiecesReconstructor) ReconstructSegment(segmentPieces []*primitives.Piece) ([]primitives.Piece, error) {
	return r.reconstructShards(segmentPieces)
}

// ReconstructPiece returns just the piece at piecePosition.
func (r *PiecesReconstructor) ReconstructPiece(segmentPieces []*primitives.Piece, piecePosition int) (primitives.Piece, error) {
	if piecePosition < 0 || piecePosition >= archiving.NumPiecesInSegment {
		return primitives.Piece{}, ErrIncorrectPiecePosition
	}
	pieces, err := r.reconstructShards(segmentPieces)
	if err != nil {
		return primitives.Piece{}, err
	}
	return pieces[piecePosition], nil
}
