package posspace

import "sort"

// Proofs is the s-bucket-indexed output of Tables.CreateProofs: a bitmap of
// which s-buckets have a winning proof, plus the packed proofs themselves
// in s-bucket order. There are at most NumSBuckets proofs.
type Proofs struct {
	K           uint8
	FoundProofs [NumSBuckets / 8]byte
	ProofBytes  [][]byte // indexed by the order FoundProofs' set bits appear
}

// sBucketOf maps a table-7 entry's y value to its s-bucket.
func sBucketOf(y uint64, k uint8) int {
	shift := int(k) - sBucketBits
	if shift < 0 {
		shift = 0
	}
	return int(y>>uint(shift)) % NumSBuckets
}

func setBit(bitmap []byte, i int) {
	bitmap[i/8] |= 1 << (i % 8)
}

func bitSet(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(i%8)) != 0
}

// packProof encodes the k-bit-per-position x values of a proof into its
// canonical 64*k/8-byte wire form.
func packProof(xs []uint32, k uint8) []byte {
	out := make([]byte, proofByteLen(k))
	for i, x := range xs {
		writeBits(out, uint64(i)*uint64(k), k, uint64(x))
	}
	return out
}

func unpackProof(data []byte, k uint8) []uint32 {
	xs := make([]uint32, ProofLen)
	for i := range xs {
		xs[i] = uint32(readBits(data, uint64(i)*uint64(k), k))
	}
	return xs
}

// CreateProofs collects the s-bucket-indexed proof set from the already
// built table 7 in one pass; together with Create it forms the
// create()+find path used for plotting.
func (t *Tables) CreateProofs() *Proofs {
	return collectProofs(t.layers[NumTables-1], t.k)
}

// CreateProofsDirect builds the tables with Create and collects their
// proofs with CreateProofs in one call. All seven table layers are held in
// memory until the proofs are collected.
func CreateProofsDirect(seed [32]byte, k uint8) (*Proofs, error) {
	tables, err := Create(seed, k)
	if err != nil {
		return nil, err
	}
	return tables.CreateProofs(), nil
}

// CreateProofsParallel is the parallel-construction counterpart of
// CreateProofsDirect.
func CreateProofsParallel(seed [32]byte, k uint8) (*Proofs, error) {
	tables, err := CreateParallel(seed, k)
	if err != nil {
		return nil, err
	}
	return tables.CreateProofs(), nil
}

func collectProofs(final []entry, k uint8) *Proofs {
	type bucketed struct {
		sBucket int
		xs      []uint32
	}
	bs := make([]bucketed, 0, len(final))
	for _, e := range final {
		bs = append(bs, bucketed{sBucket: sBucketOf(e.y, k), xs: e.xs})
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].sBucket < bs[j].sBucket })

	out := &Proofs{K: k}
	for _, b := range bs {
		if bitSet(out.FoundProofs[:], b.sBucket) {
			continue // at most one proof retained per s-bucket
		}
		setBit(out.FoundProofs[:], b.sBucket)
		out.ProofBytes = append(out.ProofBytes, packProof(b.xs, k))
	}
	return out
}

// FindProofRaw iterates every table-7 entry whose s-bucket equals
// firstKChallengeBits mod NumSBuckets, yielding each as a packed proof.
func (t *Tables) FindProofRaw(firstKChallengeBits uint32) [][]byte {
	var out [][]byte
	challenge := int(firstKChallengeBits) % NumSBuckets
	for _, e := range t.layers[NumTables-1] {
		if sBucketOf(e.y, t.k) == challenge {
			out = append(out, packProof(e.xs, t.k))
		}
	}
	return out
}
