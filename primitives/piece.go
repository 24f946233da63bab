package primitives

import (
	"github.com/ab-network/subspace-core/buffer"
	"github.com/ab-network/subspace-core/merkletree"
)

// byte offsets within a piece's flat layout: record ‖ record_root ‖
// parity_chunks_root ‖ proof.
const (
	pieceRecordOffset           = 0
	pieceRecordRootOffset       = pieceRecordOffset + RecordSize
	pieceParityChunksRootOffset = pieceRecordRootOffset + ChunkSize
	pieceProofOffset            = pieceParityChunksRootOffset + ChunkSize
)

// PieceBuilder assembles a piece's bytes in place before it is frozen into
// a cheaply-clonable Piece. It wraps a buffer.Owned the way the archiver
// fills one piece at a time while streaming a segment.
type PieceBuilder struct {
	storage *buffer.Owned
}

// NewPieceBuilder allocates a zero-filled, piece-sized builder.
func NewPieceBuilder() *PieceBuilder {
	o := buffer.NewOwned(PieceSize)
	o.SetLen(PieceSize)
	return &PieceBuilder{storage: o}
}

// SetRecord overwrites the piece's record.
func (b *PieceBuilder) SetRecord(r *Record) {
	copy(b.storage.Bytes()[pieceRecordOffset:pieceRecordOffset+RecordSize], r.Bytes())
}

// SetRecordRoot overwrites the piece's record root.
func (b *PieceBuilder) SetRecordRoot(h merkletree.Hash) {
	copy(b.storage.Bytes()[pieceRecordRootOffset:pieceRecordRootOffset+ChunkSize], h[:])
}

// SetParityChunksRoot overwrites the piece's parity-chunks root.
func (b *PieceBuilder) SetParityChunksRoot(h merkletree.Hash) {
	copy(b.storage.Bytes()[pieceParityChunksRootOffset:pieceParityChunksRootOffset+ChunkSize], h[:])
}

// SetProof overwrites the piece's segment-membership proof, which must
// have exactly SegmentProofDepth entries.
func (b *PieceBuilder) SetProof(proof []merkletree.Hash) error {
	if len(proof) != SegmentProofDepth {
		return ErrWrongByteLength
	}
	dst := b.storage.Bytes()[pieceProofOffset:]
	for i, h := range proof {
		copy(dst[i*ChunkSize:(i+1)*ChunkSize], h[:])
	}
	return nil
}

// Finish freezes the builder into a cheaply-clonable Piece. The builder
// must not be used afterwards.
func (b *PieceBuilder) Finish() Piece {
	return Piece{storage: b.storage.IntoShared()}
}

// Piece is a fixed PieceSize-byte unit of archival history: a record, its
// root, the root of the record's erasure-extended parity chunks, and the Merkle proof
// that it belongs to its segment. Piece is backed by a reference-counted
// buffer, so cloning one is cheap and never copies bytes.
type Piece struct {
	storage *buffer.Shared
}

// PieceFromBytes wraps exactly PieceSize bytes as a Piece, copying them
// into buffer-managed storage.
func PieceFromBytes(b []byte) (Piece, error) {
	if len(b) != PieceSize {
		return Piece{}, ErrWrongByteLength
	}
	return Piece{storage: buffer.SharedFromBytes(b)}, nil
}

// Bytes returns the piece's raw PieceSize bytes. The returned slice must
// not be mutated: it may be aliased by other clones of this Piece.
func (p Piece) Bytes() []byte { return p.storage.Bytes() }

// Clone returns a handle sharing the same backing storage.
func (p Piece) Clone() Piece { return Piece{storage: p.storage.Clone()} }

// Record returns the piece's record.
func (p Piece) Record() (*Record, error) {
	return RecordFromBytes(p.storage.Bytes()[pieceRecordOffset : pieceRecordOffset+RecordSize])
}

// RecordRoot returns the piece's record root.
func (p Piece) RecordRoot() merkletree.Hash {
	var h merkletree.Hash
	copy(h[:], p.storage.Bytes()[pieceRecordRootOffset:pieceRecordRootOffset+ChunkSize])
	return h
}

// ParityChunksRoot returns the piece's parity-chunks root.
func (p Piece) ParityChunksRoot() merkletree.Hash {
	var h merkletree.Hash
	copy(h[:], p.storage.Bytes()[pieceParityChunksRootOffset:pieceParityChunksRootOffset+ChunkSize])
	return h
}

// Proof returns the piece's segment-membership proof.
func (p Piece) Proof() []merkletree.Hash {
	proof := make([]merkletree.Hash, SegmentProofDepth)
	src := p.storage.Bytes()[pieceProofOffset:]
	for i := range proof {
		copy(proof[i][:], src[i*ChunkSize:(i+1)*ChunkSize])
	}
	return proof
}
