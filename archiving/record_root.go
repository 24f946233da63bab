package archiving

import (
	"github.com/ab-network/subspace-core/erasurecoding"
	"github.com/ab-network/subspace-core/merkletree"
	"github.com/ab-network/subspace-core/primitives"
)

// NewChunkCodec builds the erasure codec used to derive a record's parity
// chunks: one parity chunk per source chunk, matching the 1:1 ratio the
// segment-level codec uses for records.
func NewChunkCodec() (*erasurecoding.Codec, error) {
	return erasurecoding.New(primitives.NumChunks, primitives.NumChunks)
}

// ComputeRecordRoot derives a record's root and parity-chunks root without
// storing the parity chunks themselves: the record's own chunks are
// erasure-extended into an equal number of parity chunks, each half is
// committed to with its own balanced Merkle root, and the record root is
// the root of those two subtree roots. This lets a piece carry only its
// source chunks while still committing to data that can be regenerated on
// demand by any holder of the record.
func ComputeRecordRoot(chunkCodec *erasurecoding.Codec, record *primitives.Record) (recordRoot, parityChunksRoot merkletree.Hash, err error) {
	sourceChunks := make([][]byte, primitives.NumChunks)
	parityChunks := make([][]byte, primitives.NumChunks)
	for i := 0; i < primitives.NumChunks; i++ {
		c := record.Chunk(i)
		sourceChunks[i] = c[:]
		parityChunks[i] = make([]byte, primitives.ChunkSize)
	}

	if err := chunkCodec.Extend(sourceChunks, parityChunks); err != nil {
		return merkletree.Hash{}, merkletree.Hash{}, err
	}

	sourceChunksRoot, err := record.Root()
	if err != nil {
		return merkletree.Hash{}, merkletree.Hash{}, err
	}

	parityLeaves := make([]merkletree.Hash, primitives.NumChunks)
	for i := 0; i < primitives.NumChunks; i++ {
		copy(parityLeaves[i][:], parityChunks[i])
	}
	parityChunksRoot, err = merkletree.ComputeRootOnly(parityLeaves)
	if err != nil {
		return merkletree.Hash{}, merkletree.Hash{}, err
	}

	recordRoot, err = merkletree.ComputeRootOnly([]merkletree.Hash{sourceChunksRoot, parityChunksRoot})
	if err != nil {
		return merkletree.Hash{}, merkletree.Hash{}, err
	}
	return recordRoot, parityChunksRoot, nil
}
