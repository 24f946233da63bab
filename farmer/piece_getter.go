package farmer

import (
	"context"
	"fmt"

	"github.com/ab-network/subspace-core/primitives"
	"github.com/ab-network/subspace-core/reconstructor"
)

// PieceGetter fetches one archived piece by index. Implementations may
// serve pieces from local storage, from peers, or — when a piece isn't
// directly available — by erasure-reconstructing it from the rest of its
// segment.
type PieceGetter interface {
	GetPiece(ctx context.Context, pieceIndex primitives.PieceIndex) (primitives.Piece, error)
}

// SegmentPieceSource supplies every piece of a segment, some of which may
// be absent, to back a ReconstructingPieceGetter.
type SegmentPieceSource interface {
	// SegmentPieces returns the full NumPiecesInSegment-length slice for the
	// segment containing pieceIndex, with nil entries for pieces not held
	// locally.
	SegmentPieces(ctx context.Context, pieceIndex primitives.PieceIndex) ([]*primitives.Piece, int, error)
}

// ReconstructingPieceGetter serves a piece directly when its segment source
// already has it, and falls back to erasure reconstruction from the rest of
// the segment otherwise.
type ReconstructingPieceGetter struct {
	source        SegmentPieceSource
	reconstructor *reconstructor.PiecesReconstructor
}

// NewReconstructingPieceGetter builds a PieceGetter that reconstructs
// missing pieces on demand.
func NewReconstructingPieceGetter(source SegmentPieceSource) (*ReconstructingPieceGetter, error) {
	r, err := reconstructor.New()
	if err != nil {
		return nil, fmt.Errorf("farmer: building reconstructor: %w", err)
	}
	return &ReconstructingPieceGetter{source: source, reconstructor: r}, nil
}

// GetPiece implements PieceGetter.
func (g *ReconstructingPieceGetter) GetPiece(ctx context.Context, pieceIndex primitives.PieceIndex) (primitives.Piece, error) {
	segmentPieces, positionInSegment, err := g.source.SegmentPieces(ctx, pieceIndex)
	if err != nil {
		return primitives.Piece{}, err
	}
	if segmentPieces[positionInSegment] != nil {
		return *segmentPieces[positionInSegment], nil
	}
	return g.reconstructor.ReconstructPiece(segmentPieces, positionInSegment)
}
