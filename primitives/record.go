package primitives

import (
	"errors"

	"github.com/ab-network/subspace-core/merkletree"
)

// ErrWrongByteLength is returned when a fixed-size wire type is built from
// a byte slice of the wrong length.
var ErrWrongByteLength = errors.New("primitives: wrong byte length")

// Chunk is one 32-byte s-bucket input: the atomic unit a record is split
// into and a proof-of-space table is built over.
type Chunk [ChunkSize]byte

// Record is the raw-data portion of a piece: NumChunks chunks, either
// sourced directly from archived block bytes (a source record) or produced
// by erasure-extending a segment's source records (a parity record).
type Record [RecordSize]byte

// Chunk returns a copy of the i-th chunk of the record.
func (r *Record) Chunk(i int) Chunk {
	var c Chunk
	copy(c[:], r[i*ChunkSize:(i+1)*ChunkSize])
	return c
}

// SetChunk overwrites the i-th chunk of the record.
func (r *Record) SetChunk(i int, c Chunk) {
	copy(r[i*ChunkSize:(i+1)*ChunkSize], c[:])
}

// Root computes the balanced Merkle root over the record's own chunks, each
// chunk treated directly as a tree leaf (chunks are already hash-sized, so
// no extra leaf-hashing step is needed). This is the "source-chunks root"
// half of a piece's full record root; the other half, the parity-chunks
// root, comes from erasure-extending these same chunks (see package
// archiving), which Record alone has no codec to perform.
func (r *Record) Root() (merkletree.Hash, error) {
	leaves := make([]merkletree.Hash, NumChunks)
	for i := range leaves {
		leaves[i] = merkletree.Hash(r.Chunk(i))
	}
	return merkletree.ComputeRootOnly(leaves)
}

// Bytes returns the record's raw bytes as a flat slice.
func (r *Record) Bytes() []byte {
	return r[:]
}

// RecordFromBytes reinterprets exactly RecordSize bytes as a Record.
func RecordFromBytes(b []byte) (*Record, error) {
	if len(b) != RecordSize {
		return nil, ErrWrongByteLength
	}
	var r Record
	copy(r[:], b)
	return &r, nil
}
