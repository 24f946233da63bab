package posspace

import "lukechampine.com/blake3"

// entry is one row of a proof-of-space table: a y value used for matching
// into the next table, and the table-1 x positions ("pre-images") this
// entry's match chain ultimately traces back to, in canonical left-to-right
// order.
type entry struct {
	y  uint64
	xs []uint32
}

func bucketOf(y uint64) uint64 {
	return y >> kExtraBits
}

// matches reports whether left (from the lower bucket) and right (from the
// adjacent bucket one above it) satisfy this construction's matching rule.
//
// The real rmap-based chiapos matching table wasn't available to ground
// this on, so adjacent-bucket matching here uses a small explicit parity
// check instead of the upstream 64-entry shifted lookup; see DESIGN.md.
func matches(left, right entry) bool {
	if bucketOf(right.y) != bucketOf(left.y)+1 {
		return false
	}
	lowMask := uint64(1)<<kExtraBits - 1
	sum := (left.y&lowMask + right.y&lowMask) % numMatchParities
	target := bucketOf(left.y) % numMatchParities
	return sum == target
}

// deriveY computes the next table's y value for a matched (left, right)
// pair: table is the 1-based index of the table being built (2..7).
func deriveY(table int, left, right entry) uint64 {
	h := blake3.New(32, nil)
	h.Write([]byte{byte(table)})
	var buf [8]byte
	putUint64(buf[:], left.y)
	h.Write(buf[:])
	putUint64(buf[:], right.y)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return readBits(sum, 0, 64)
}

func putUint64(dst []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

func mergeXs(left, right entry) []uint32 {
	xs := make([]uint32, 0, len(left.xs)+len(right.xs))
	xs = append(xs, left.xs...)
	xs = append(xs, right.xs...)
	return xs
}
