package primitives

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/merkletree"
	"lukechampine.com/blake3"
)

// PublicKeyHash identifies a farmer's identity for sector derivation.
type PublicKeyHash [32]byte

// SectorIndex identifies one sector within a single farmer's plot.
type SectorIndex uint64

// HistorySize is a monotonically growing count of archived segments a
// sector (or a farmer's view of the chain) was plotted against.
type HistorySize uint64

// SectorId is the deterministic 32-byte identifier of a sector, derived
// from a farmer's identity, the sector's index within that farmer's plot,
// and the history size the sector was plotted against. Re-plotting the
// same (PublicKeyHash, SectorIndex) against a larger HistorySize yields a
// different SectorId, and therefore a different piece selection.
type SectorId [32]byte

// DeriveSectorId computes the SectorId for (publicKeyHash, sectorIndex,
// historySize).
func DeriveSectorId(publicKeyHash PublicKeyHash, sectorIndex SectorIndex, historySize HistorySize) SectorId {
	hasher := blake3.New(32, nil)
	hasher.Write(publicKeyHash[:])
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(sectorIndex))
	hasher.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(historySize))
	hasher.Write(buf[:])

	var id SectorId
	copy(id[:], hasher.Sum(nil))
	return id
}

// SectorMetadata describes one plotted sector: its identity, the history
// size it was plotted against, how many pieces it holds, and how many
// chunks landed in each of the NumChunks s-buckets across the sector.
type SectorMetadata struct {
	SectorId       SectorId
	HistorySize    HistorySize
	PiecesInSector int
	SBucketSizes   [NumChunks]uint16
}

// SectorContentsMap is the per-s-bucket occupancy bitmap written to disk
// immediately before a sector's encoded records. Bit (piece, sBucket) is
// set when that piece contributed a chunk to that s-bucket's encoding.
type SectorContentsMap struct {
	piecesInSector int
	bits           []byte // piecesInSector * NumChunks bits, row-major by piece
}

// NewSectorContentsMap allocates a zeroed contents map for a sector with
// piecesInSector pieces.
func NewSectorContentsMap(piecesInSector int) *SectorContentsMap {
	numBits := piecesInSector * NumChunks
	return &SectorContentsMap{
		piecesInSector: piecesInSector,
		bits:           make([]byte, (numBits+7)/8),
	}
}

func (m *SectorContentsMap) index(piece, sBucket int) int {
	return piece*NumChunks + sBucket
}

// Set marks (piece, sBucket) as occupied.
func (m *SectorContentsMap) Set(piece, sBucket int) {
	i := m.index(piece, sBucket)
	m.bits[i/8] |= 1 << uint(i%8)
}

// Get reports whether (piece, sBucket) is occupied.
func (m *SectorContentsMap) Get(piece, sBucket int) bool {
	i := m.index(piece, sBucket)
	return m.bits[i/8]&(1<<uint(i%8)) != 0
}

// SBucketCount returns how many pieces contributed a chunk to sBucket.
func (m *SectorContentsMap) SBucketCount(sBucket int) uint16 {
	var count uint16
	for piece := 0; piece < m.piecesInSector; piece++ {
		if m.Get(piece, sBucket) {
			count++
		}
	}
	return count
}

// Bytes returns the map's raw on-disk bitmap representation.
func (m *SectorContentsMap) Bytes() []byte { return m.bits }

// PotOutput is one 32-byte output of the proof-of-time hash chain.
type PotOutput [32]byte

// PotSeed is the 32-byte seed a proof-of-time chain is (re)started from,
// e.g. at a parameters-change boundary.
type PotSeed [32]byte

// Seed derives the next slot's seed from this slot's output: plain blake3
// of the output bytes, with a one-byte domain tag so a PoT seed can never
// collide with a PoT output that happens to carry the same 32 bytes.
func (o PotOutput) Seed() PotSeed {
	hasher := blake3.New(32, nil)
	hasher.Write([]byte{'s'})
	hasher.Write(o[:])
	var seed PotSeed
	copy(seed[:], hasher.Sum(nil))
	return seed
}

// SeedWithEntropy derives the next slot's seed the same way Seed does, but
// additionally mixes in externally-injected entropy. Used only in the
// single slot where a scheduled PotParametersChange takes effect.
func (o PotOutput) SeedWithEntropy(entropy [32]byte) PotSeed {
	hasher := blake3.New(32, nil)
	hasher.Write([]byte{'s'})
	hasher.Write(o[:])
	hasher.Write(entropy[:])
	var seed PotSeed
	copy(seed[:], hasher.Sum(nil))
	return seed
}

// PotCheckpoints holds the intermediate outputs recorded across one slot's
// worth of PoT iterations: one per checkpoint interval, ending in the
// slot's final output.
type PotCheckpoints []PotOutput

// Output returns the final checkpoint of the slot, i.e. this slot's
// externally visible PoT output.
func (c PotCheckpoints) Output() PotOutput {
	return c[len(c)-1]
}

// PotParametersChange describes a scheduled change to PoT parameters
// (iterations per slot and a reseed) taking effect at a given slot: the
// new slot_iterations applies from Slot onward, and Entropy is mixed into
// the seed only in the single slot where Slot == next_slot (see
// DeriveNextSlotInput).
type PotParametersChange struct {
	Slot           SlotNumber
	SlotIterations uint32
	Entropy        [32]byte
}

// Hash is a generic 32-byte content hash alias used by block headers and
// transaction identifiers.
type Hash = merkletree.Hash
