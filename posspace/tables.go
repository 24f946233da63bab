package posspace

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Tables holds all seven proof-of-space tables built from a single 32-byte
// seed at difficulty k. Rust's const-generic Tables<const K: u8> becomes a
// runtime field here: Go has no const generics, and k only ever needs to be
// known at plot-creation time, not at compile time.
type Tables struct {
	k      uint8
	layers [][]entry // layers[0] is table 1, layers[NumTables-1] is table 7
}

// Create builds all seven tables sequentially from seed at difficulty k.
func Create(seed [32]byte, k uint8) (*Tables, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}

	keystream := chacha8Keystream(seed, int((uint64(1)<<k)*uint64(k)/8)+8)

	table1 := make([]entry, uint64(1)<<k)
	for x := range table1 {
		table1[x] = entry{y: f1(keystream, k, uint32(x)), xs: []uint32{uint32(x)}}
	}

	layers := make([][]entry, NumTables)
	layers[0] = table1
	for i := 1; i < NumTables; i++ {
		layers[i] = buildNextTable(i+1, k, layers[i-1])
	}

	return &Tables{k: k, layers: layers}, nil
}

// CreateParallel is functionally equivalent to Create but builds table 1
// with a pool of goroutines, trading CPU efficiency for wall-clock latency.
// Tables 2 through 7 are built sequentially, as in Create.
func CreateParallel(seed [32]byte, k uint8) (*Tables, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}

	keystream := chacha8Keystream(seed, int((uint64(1)<<k)*uint64(k)/8)+8)

	table1 := make([]entry, uint64(1)<<k)
	g, _ := errgroup.WithContext(context.Background())
	const chunks = 8
	n := len(table1)
	chunkSize := (n + chunks - 1) / chunks
	for c := 0; c < n; c += chunkSize {
		start, end := c, min(c+chunkSize, n)
		g.Go(func() error {
			for x := start; x < end; x++ {
				table1[x] = entry{y: f1(keystream, k, uint32(x)), xs: []uint32{uint32(x)}}
			}
			return nil
		})
	}
	_ = g.Wait()

	layers := make([][]entry, NumTables)
	layers[0] = table1
	for i := 1; i < NumTables; i++ {
		layers[i] = buildNextTable(i+1, k, layers[i-1])
	}

	return &Tables{k: k, layers: layers}, nil
}

// buildNextTable matches adjacent-bucket entries of prev to build the
// table-th layer (2-based). Matching is bucket-sorted rather than an
// all-pairs scan, so cost stays close to linear in len(prev).
func buildNextTable(table int, k uint8, prev []entry) []entry {
	sorted := make([]entry, len(prev))
	copy(sorted, prev)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].y < sorted[j].y })

	mask := uint64(1)<<k - 1
	var next []entry

	i := 0
	for i < len(sorted) {
		b := bucketOf(sorted[i].y)
		j := i
		for j < len(sorted) && bucketOf(sorted[j].y) == b {
			j++
		}
		kEnd := j
		for kEnd < len(sorted) && bucketOf(sorted[kEnd].y) == b+1 {
			kEnd++
		}

		for li := i; li < j; li++ {
			for ri := j; ri < kEnd; ri++ {
				if matches(sorted[li], sorted[ri]) {
					y := deriveY(table, sorted[li], sorted[ri]) & mask
					next = append(next, entry{y: y, xs: mergeXs(sorted[li], sorted[ri])})
				}
			}
		}

		i = j
	}

	return next
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
