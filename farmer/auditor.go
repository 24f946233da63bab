package farmer

import (
	"encoding/binary"

	"github.com/ab-network/subspace-core/posspace"
	"github.com/ab-network/subspace-core/primitives"
	"github.com/holiman/uint256"
	"lukechampine.com/blake3"
)

// GlobalChallenge is the 32-byte value every sector in a plot is audited
// against for one slot.
type GlobalChallenge [32]byte

// Candidate is a winning audit result: a chunk within a sector's plot
// whose evaluation landed within solution_range of the global challenge.
// It carries enough identifying state for the caller to look up the
// surrounding proofs (record root, record proof, chunk proof,
// proof-of-space bytes) and assemble a full primitives.Solution.
type Candidate struct {
	SectorId    primitives.SectorId
	SectorIndex primitives.SectorIndex
	HistorySize primitives.HistorySize
	PieceOffset uint16
	SBucket     int
	Chunk       primitives.Chunk
	Distance    uint64
}

// BuildSolution assembles a full Solution from a winning Candidate plus the
// proof material the caller looked up from its plot storage for the
// candidate's (sector, piece, s-bucket).
func (c Candidate) BuildSolution(
	publicKey primitives.PublicKey,
	recordRoot primitives.Hash,
	recordProof []primitives.Hash,
	chunkProof []primitives.Hash,
	proofOfSpace []byte,
) primitives.Solution {
	return primitives.Solution{
		PublicKey:    publicKey,
		SectorIndex:  c.SectorIndex,
		HistorySize:  c.HistorySize,
		PieceOffset:  c.PieceOffset,
		RecordRoot:   recordRoot,
		RecordProof:  recordProof,
		Chunk:        c.Chunk,
		ChunkProof:   chunkProof,
		ProofOfSpace: proofOfSpace,
	}
}

// PlotReader reads one occupied chunk from a plotted sector's on-disk
// records, by (sector index, piece offset within the sector, s-bucket).
type PlotReader interface {
	ReadChunk(sectorIndex primitives.SectorIndex, pieceOffset int, sBucket int) (primitives.Chunk, error)
}

// AuditSector audits a single plotted sector against globalChallenge,
// returning every chunk whose evaluation distance from the challenge is at
// most solutionRange.
func AuditSector(
	sectorIndex primitives.SectorIndex,
	metadata primitives.SectorMetadata,
	contentsMap *primitives.SectorContentsMap,
	reader PlotReader,
	globalChallenge GlobalChallenge,
	solutionRange uint64,
) ([]Candidate, error) {
	sBucket := sectorSBucket(metadata.SectorId, globalChallenge)

	var candidates []Candidate
	for piece := 0; piece < metadata.PiecesInSector; piece++ {
		if !contentsMap.Get(piece, sBucket) {
			continue
		}

		chunk, err := reader.ReadChunk(sectorIndex, piece, sBucket)
		if err != nil {
			return nil, err
		}

		distance := bidirectionalDistance(evaluate(chunk, globalChallenge), challengeTarget(globalChallenge))
		if distance <= solutionRange {
			candidates = append(candidates, Candidate{
				SectorId:    metadata.SectorId,
				SectorIndex: sectorIndex,
				HistorySize: metadata.HistorySize,
				PieceOffset: uint16(piece),
				SBucket:     sBucket,
				Chunk:       chunk,
				Distance:    distance,
			})
		}
	}
	return candidates, nil
}

// AuditPlotParams bundles the plot-wide audit inputs a farmer iterates over
// once per slot.
type AuditPlotParams struct {
	PublicKeyHash   primitives.PublicKeyHash
	GlobalChallenge GlobalChallenge
	SolutionRange   uint64
	SectorsMetadata []primitives.SectorMetadata
	ContentsMaps    []*primitives.SectorContentsMap
	Reader          PlotReader
	ExcludedSectors map[primitives.SectorIndex]struct{}
}

// AuditPlotSync scans every sector of a plot not named in ExcludedSectors
// for chunks answering GlobalChallenge, in sector order.
func AuditPlotSync(params AuditPlotParams) ([]Candidate, error) {
	var all []Candidate
	for i, metadata := range params.SectorsMetadata {
		sectorIndex := primitives.SectorIndex(i)
		if _, excluded := params.ExcludedSectors[sectorIndex]; excluded {
			continue
		}

		found, err := AuditSector(sectorIndex, metadata, params.ContentsMaps[i], params.Reader, params.GlobalChallenge, params.SolutionRange)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}
	return all, nil
}

func sectorSBucket(sectorId primitives.SectorId, challenge GlobalChallenge) int {
	h := blake3.New(8, nil)
	h.Write(sectorId[:])
	h.Write(challenge[:])
	sum := h.Sum(nil)
	return int(binary.LittleEndian.Uint64(sum) % posspace.NumSBuckets)
}

func evaluate(chunk primitives.Chunk, challenge GlobalChallenge) uint64 {
	h := blake3.New(8, nil)
	h.Write(chunk[:])
	h.Write(challenge[:])
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

func challengeTarget(challenge GlobalChallenge) uint64 {
	return binary.LittleEndian.Uint64(challenge[:8])
}

// bidirectionalDistance computes the shorter of the clockwise and
// counter-clockwise distances between a and b around the 2^64 ring,
// matching how solution ranges are evaluated against audit chunks.
func bidirectionalDistance(a, b uint64) uint64 {
	ua, ub := uint256.NewInt(a), uint256.NewInt(b)
	diff := new(uint256.Int)
	if ua.Cmp(ub) >= 0 {
		diff.Sub(ua, ub)
	} else {
		diff.Sub(ub, ua)
	}

	modulus := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	wrap := new(uint256.Int).Sub(modulus, diff)
	if wrap.Lt(diff) {
		return wrap.Uint64()
	}
	return diff.Uint64()
}
