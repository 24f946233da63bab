package primitives

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/merkletree"
	"lukechampine.com/blake3"
)

// hashHeaderFields hashes every field of h in a fixed order, including the
// seal only when includeSeal is true. Hash-sized fields are written
// directly; variable-length fields are length-prefixed so the byte stream
// decomposes unambiguously.
func hashHeaderFields(h *BlockHeader, includeSeal bool) merkletree.Hash {
	hasher := blake3.New(merkletree.HashSize, nil)

	writeUint8(hasher, h.Prefix.Version)
	writeUint64(hasher, uint64(h.Prefix.Number))
	writeUint32(hasher, uint32(h.Prefix.Shard))
	writeUint64(hasher, h.Prefix.Timestamp)
	hasher.Write(h.Prefix.ParentRoot[:])
	hasher.Write(h.Prefix.MmrRoot[:])

	writeUint64(hasher, uint64(h.ConsensusInfo.Slot))
	hasher.Write(h.ConsensusInfo.ProofOfTime[:])
	hasher.Write(h.ConsensusInfo.FutureProofOfTime[:])
	writeSolution(hasher, &h.ConsensusInfo.Solution)

	writeUint64(hasher, h.ConsensusParameters.SolutionRange)
	writeUint64(hasher, h.ConsensusParameters.NextSolutionRange)
	if c := h.ConsensusParameters.PotParameterChange; c != nil {
		writeUint8(hasher, 1)
		writeUint64(hasher, uint64(c.Slot))
		writeUint32(hasher, c.SlotIterations)
		hasher.Write(c.Entropy[:])
	} else {
		writeUint8(hasher, 0)
	}
	if r := h.ConsensusParameters.SuperSegmentRoot; r != nil {
		writeUint8(hasher, 1)
		hasher.Write(r[:])
	} else {
		writeUint8(hasher, 0)
	}

	hasher.Write(h.Result.BodyRoot[:])
	hasher.Write(h.Result.StateRoot[:])

	if includeSeal {
		writeBytes(hasher, h.Seal)
	}

	var out merkletree.Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

func writeSolution(hasher *blake3.Hasher, s *Solution) {
	hasher.Write(s.PublicKey[:])
	writeUint64(hasher, uint64(s.SectorIndex))
	writeUint64(hasher, uint64(s.HistorySize))
	writeUint16(hasher, s.PieceOffset)
	hasher.Write(s.RecordRoot[:])
	writeHashSlice(hasher, s.RecordProof)
	hasher.Write(s.Chunk[:])
	writeHashSlice(hasher, s.ChunkProof)
	writeBytes(hasher, s.ProofOfSpace)
}

func writeHashSlice(hasher *blake3.Hasher, hashes []merkletree.Hash) {
	writeUint32(hasher, uint32(len(hashes)))
	for _, h := range hashes {
		hasher.Write(h[:])
	}
}

func writeBytes(hasher *blake3.Hasher, b []byte) {
	writeUint32(hasher, uint32(len(b)))
	hasher.Write(b)
}

func writeUint8(hasher *blake3.Hasher, v uint8) {
	hasher.Write([]byte{v})
}

func writeUint16(hasher *blake3.Hasher, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	hasher.Write(buf[:])
}

func writeUint32(hasher *blake3.Hasher, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	hasher.Write(buf[:])
}

func writeUint64(hasher *blake3.Hasher, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	hasher.Write(buf[:])
}
