package farmer

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/posspace"
	"github.com/ab-network/subspace-core/primitives"
	"lukechampine.com/blake3"
)

// PosK is the proof-of-space difficulty parameter sectors are plotted at.
const PosK = posspace.MinK

// RecordsEncoder turns a plain archived record into its plotted form: for
// every s-bucket a proof-of-space table produced a proof for, the record's
// chunk at that position is masked with a keystream derived from the
// proof, so recovering the original chunk requires redoing the proof-of-
// space lookup rather than just reading the plot.
type RecordsEncoder struct{}

// NewRecordsEncoder builds the default records encoder.
func NewRecordsEncoder() *RecordsEncoder { return &RecordsEncoder{} }

// EncodeRecord encodes piece's record for its position within sectorId,
// returning the encoded record and the set of s-buckets that received a
// masked chunk (the rest are left untouched and unmarked, per
// SectorContentsMap's semantics).
func (e *RecordsEncoder) EncodeRecord(sectorId primitives.SectorId, pieceOffset uint16, piece primitives.Piece) (primitives.Record, []int, error) {
	record, err := piece.Record()
	if err != nil {
		return primitives.Record{}, nil, err
	}

	seed := derivePosSeed(sectorId, pieceOffset)
	tables, err := posspace.Create(seed, PosK)
	if err != nil {
		return primitives.Record{}, nil, err
	}
	proofs := tables.CreateProofs()

	encoded := *record
	var occupied []int
	for sBucket := 0; sBucket < posspace.NumSBuckets; sBucket++ {
		proofIndex := countSetBitsBelow(proofs.FoundProofs[:], sBucket)
		if !bitIsSet(proofs.FoundProofs[:], sBucket) {
			continue
		}
		mask := chunkMask(proofs.ProofBytes[proofIndex])
		chunk := encoded.Chunk(sBucket)
		for i := range chunk {
			chunk[i] ^= mask[i]
		}
		encoded.SetChunk(sBucket, chunk)
		occupied = append(occupied, sBucket)
	}

	return encoded, occupied, nil
}

func derivePosSeed(sectorId primitives.SectorId, pieceOffset uint16) [32]byte {
	h := blake3.New(32, nil)
	h.Write(sectorId[:])
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], pieceOffset)
	h.Write(buf[:])
	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return seed
}

func chunkMask(proof []byte) primitives.Chunk {
	sum := blake3.Sum256(proof)
	return primitives.Chunk(sum)
}

func bitIsSet(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(i%8)) != 0
}

func countSetBitsBelow(bitmap []byte, i int) int {
	count := 0
	for j := 0; j < i; j++ {
		if bitIsSet(bitmap, j) {
			count++
		}
	}
	return count
}
