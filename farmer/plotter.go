package farmer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ab-network/subspace-core/primitives"
	"golang.org/x/sync/errgroup"
)

// PlotParams describes one sector to plot.
type PlotParams struct {
	PublicKeyHash  primitives.PublicKeyHash
	SectorIndex    primitives.SectorIndex
	HistorySize    primitives.HistorySize
	PiecesInSector int
	PieceGetter    PieceGetter
	Encoder        *RecordsEncoder
	// Concurrency bounds how many pieces are fetched and encoded at once.
	// Zero selects a small default.
	Concurrency int
}

// PlottedSector is the result of plotting one sector: its metadata, the
// per-s-bucket occupancy bitmap, and the encoded records themselves in
// piece order.
type PlottedSector struct {
	Metadata    primitives.SectorMetadata
	ContentsMap *primitives.SectorContentsMap
	Records     []primitives.Record
}

// Plotter encodes archived pieces into a farmer's plot using
// proof-of-space tables.
type Plotter struct{}

// NewPlotter builds a Plotter.
func NewPlotter() *Plotter { return &Plotter{} }

// PlotSector derives a sector's identity, deterministically chooses which
// archived pieces it holds, fetches and PoS-encodes each one, and returns
// the assembled sector. Canceling ctx stops plotting between pieces: work
// for pieces not yet started is skipped, in-flight fetches receive the
// canceled context, and an encode already running completes first.
func (p *Plotter) PlotSector(ctx context.Context, params PlotParams) (*PlottedSector, error) {
	if params.PiecesInSector <= 0 {
		return nil, fmt.Errorf("farmer: PiecesInSector must be positive")
	}
	encoder := params.Encoder
	if encoder == nil {
		encoder = NewRecordsEncoder()
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	sectorId := primitives.DeriveSectorId(params.PublicKeyHash, params.SectorIndex, params.HistorySize)
	pieceIndices := ChoosePieceIndices(sectorId, params.HistorySize, params.PiecesInSector)

	records := make([]primitives.Record, params.PiecesInSector)
	contentsMap := primitives.NewSectorContentsMap(params.PiecesInSector)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pieceIndex := range pieceIndices {
		i, pieceIndex := i, pieceIndex
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			piece, err := params.PieceGetter.GetPiece(gctx, pieceIndex)
			if err != nil {
				return fmt.Errorf("farmer: fetching piece %d for sector slot %d: %w", pieceIndex, i, err)
			}

			encoded, occupiedBuckets, err := encoder.EncodeRecord(sectorId, uint16(i), piece)
			if err != nil {
				return fmt.Errorf("farmer: encoding piece %d for sector slot %d: %w", pieceIndex, i, err)
			}

			mu.Lock()
			records[i] = encoded
			for _, b := range occupiedBuckets {
				contentsMap.Set(i, b)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	metadata := primitives.SectorMetadata{
		SectorId:       sectorId,
		HistorySize:    params.HistorySize,
		PiecesInSector: params.PiecesInSector,
	}
	for sBucket := range metadata.SBucketSizes {
		metadata.SBucketSizes[sBucket] = contentsMap.SBucketCount(sBucket)
	}

	return &PlottedSector{Metadata: metadata, ContentsMap: contentsMap, Records: records}, nil
}
