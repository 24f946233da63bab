// Package primitives defines the shared wire types of the consensus core:
// pieces, records, segments, sectors, the low-level proof-of-time output
// types, block header shapes, and the capability-set types a transaction
// executor would implement against. It has no behavior of its own beyond
// layout, derivation, and validation — the algorithms that produce and
// consume these types live in archiving, reconstructor, pot, posspace,
// farmer, and slotworker.
package primitives

// ChunkSize is the size in bytes of one record chunk, one record root, one
// parity-chunks root, and one Merkle proof step. It is also the s-bucket
// input size for proof-of-space.
const ChunkSize = 32

// NumRawRecords is the number of source records archived into one segment.
// A segment holds NumRawRecords source pieces plus NumRawRecords parity
// pieces produced by 1:1 erasure coding.
const NumRawRecords = 128

// SegmentProofDepth is the depth of the balanced Merkle tree over the
// 2*NumRawRecords per-record roots of a segment, i.e. the number of 32-byte
// steps in a piece's proof that it belongs to its segment.
const SegmentProofDepth = 8 // log2(2 * NumRawRecords)

// PieceSize is the fixed size in bytes of one piece: record, record root,
// parity-chunks root, and the segment-membership proof.
const PieceSize = RecordSize + ChunkSize + ChunkSize + SegmentProofDepth*ChunkSize

// NumChunks is the number of 32-byte chunks that make up one record. It must
// be a power of two: a record's chunks are leaves of a balanced Merkle tree
// (see archiving.ComputeRecordRoot), and the balanced variant only accepts
// exact powers of two. 1024 chunks keeps a piece close to the traditional
// 32 KiB target (it lands at 33088 bytes once the two roots and the proof
// are added) without fighting that constraint.
const NumChunks = 1024

// RecordSize is the size in bytes of one record's raw chunk data.
const RecordSize = NumChunks * ChunkSize

// RecordedHistorySegmentSize is the number of raw input bytes archived into
// one segment before erasure coding: NumRawRecords source records' worth.
const RecordedHistorySegmentSize = NumRawRecords * RecordSize
