// Package archiving turns an append-only stream of block bytes into
// erasure-coded, Merkle-committed segments of pieces.
package archiving

import (
	"github.com/ab-network/subspace-core/primitives"
)

// NumPiecesInSegment is the number of pieces (source plus parity) produced
// per archived segment.
const NumPiecesInSegment = 2 * primitives.NumRawRecords

// ArchivedSegment is one archiver output: the full set of pieces for a
// segment plus the header committing to it.
type ArchivedSegment struct {
	Pieces []primitives.Piece
	Header primitives.SegmentHeader
}
