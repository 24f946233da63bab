// Package farmer implements sector plotting and plot auditing: encoding
// archived pieces into a farmer's plot using proof-of-space tables, and
// scanning a plot for chunks answering a slot's global challenge.
package farmer

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/archiving"
	"github.com/ab-network/subspace-core/primitives"
	"lukechampine.com/blake3"
)

// ChoosePieceIndices deterministically selects piecesInSector piece indices
// for a sector from its SectorId and the history size it was plotted
// against: the same inputs always choose the same pieces, and a larger
// historySize (implying more archived segments exist) draws from a wider
// pool.
func ChoosePieceIndices(sectorId primitives.SectorId, historySize primitives.HistorySize, piecesInSector int) []primitives.PieceIndex {
	totalPieces := uint64(historySize) * uint64(archiving.NumPiecesInSegment)
	if totalPieces == 0 {
		return nil
	}

	indices := make([]primitives.PieceIndex, piecesInSector)
	for i := range indices {
		hasher := blake3.New(8, nil)
		hasher.Write(sectorId[:])
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		hasher.Write(buf[:])
		sum := hasher.Sum(nil)
		indices[i] = primitives.PieceIndex(binary.LittleEndian.Uint64(sum) % totalPieces)
	}
	return indices
}
