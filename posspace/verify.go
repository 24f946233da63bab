package posspace

import "lukechampine.com/blake3"

// VerifyOnlyRaw statelessly re-derives a proof's final y value from seed and
// confirms that its s-bucket (the top bits of the k-bit y, one of
// NumSBuckets values) equals firstKChallengeBits mod NumSBuckets, without
// computing a quality string. The remaining bits of y are not compared with
// the challenge. It does not require Tables to have been built.
func VerifyOnlyRaw(seed [32]byte, k uint8, firstKChallengeBits uint32, proof []byte) (bool, error) {
	if err := validateK(k); err != nil {
		return false, err
	}
	if len(proof) != proofByteLen(k) {
		return false, ErrMalformedProof
	}

	finalY, ok := recomputeFinalY(seed, k, proof)
	if !ok {
		return false, nil
	}

	challenge := int(firstKChallengeBits) % NumSBuckets
	return sBucketOf(finalY, k) == challenge, nil
}

// Verify re-derives a proof's final y value and, if it matches the
// challenge, returns a 32-byte quality derived from the proof and
// challenge. The exact upstream quality-string derivation wasn't available
// to ground this on, so quality here is a direct BLAKE3 of the proof bytes
// and challenge — sufficient for comparing candidate proofs against a
// solution range, which is the only property callers rely on.
func Verify(seed [32]byte, k uint8, challenge [32]byte, proof []byte) ([32]byte, bool, error) {
	var firstK uint32
	firstK = uint32(readBits(challenge[:], 0, k))

	ok, err := VerifyOnlyRaw(seed, k, firstK, proof)
	if err != nil || !ok {
		return [32]byte{}, false, err
	}

	h := blake3.New(32, nil)
	h.Write(proof)
	h.Write(challenge[:])
	var quality [32]byte
	copy(quality[:], h.Sum(nil))
	return quality, true, nil
}

// recomputeFinalY replays f1 and the table-2..7 match-derivation chain over
// a proof's 64 table-1 positions, confirming every intermediate pairing is
// a legal match. It returns false if any pairing fails to match.
func recomputeFinalY(seed [32]byte, k uint8, proof []byte) (uint64, bool) {
	xs := unpackProof(proof, k)
	keystream := chacha8Keystream(seed, int((uint64(1)<<k)*uint64(k)/8)+8)

	layer := make([]entry, len(xs))
	for i, x := range xs {
		layer[i] = entry{y: f1(keystream, k, x), xs: []uint32{x}}
	}

	mask := uint64(1)<<k - 1
	for table := 2; table <= NumTables; table++ {
		next := make([]entry, 0, len(layer)/2)
		for i := 0; i+1 < len(layer); i += 2 {
			left, right := layer[i], layer[i+1]
			if bucketOf(left.y) > bucketOf(right.y) {
				left, right = right, left
			}
			if !matches(left, right) {
				return 0, false
			}
			y := deriveY(table, left, right) & mask
			next = append(next, entry{y: y, xs: mergeXs(left, right)})
		}
		layer = next
	}

	if len(layer) != 1 {
		return 0, false
	}
	return layer[0].y, true
}
