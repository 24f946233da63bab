package posspace

import "encoding/binary"

// ChaCha8 keystream generation, following the same quarter-round structure
// as golang.org/x/crypto/chacha20, but with 8 rounds instead of the fixed
// 20-round IETF variant that package exposes. x/crypto has no knob for
// round count, so the block function is reimplemented here directly.

const (
	chachaConst0 = 0x61707865
	chachaConst1 = 0x3320646e
	chachaConst2 = 0x79622d32
	chachaConst3 = 0x6b206574
)

func quarterRound(a, b, c, d *uint32) {
	*a += *b
	*d ^= *a
	*d = (*d << 16) | (*d >> 16)

	*c += *d
	*b ^= *c
	*b = (*b << 12) | (*b >> 20)

	*a += *b
	*d ^= *a
	*d = (*d << 8) | (*d >> 24)

	*c += *d
	*b ^= *c
	*b = (*b << 7) | (*b >> 25)
}

// chacha8Block runs the 8-round ChaCha core over a 256-bit key, a 64-bit
// block counter, and a 64-bit nonce, producing one 64-byte keystream block.
func chacha8Block(key [32]byte, counter uint64, nonce uint64) [64]byte {
	var state [16]uint32
	state[0] = chachaConst0
	state[1] = chachaConst1
	state[2] = chachaConst2
	state[3] = chachaConst3
	for i := 0; i < 8; i++ {
		state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	state[12] = uint32(counter)
	state[13] = uint32(counter >> 32)
	state[14] = uint32(nonce)
	state[15] = uint32(nonce >> 32)

	working := state
	for round := 0; round < 4; round++ {
		quarterRound(&working[0], &working[4], &working[8], &working[12])
		quarterRound(&working[1], &working[5], &working[9], &working[13])
		quarterRound(&working[2], &working[6], &working[10], &working[14])
		quarterRound(&working[3], &working[7], &working[11], &working[15])

		quarterRound(&working[0], &working[5], &working[10], &working[15])
		quarterRound(&working[1], &working[6], &working[11], &working[12])
		quarterRound(&working[2], &working[7], &working[8], &working[13])
		quarterRound(&working[3], &working[4], &working[9], &working[14])
	}

	var out [64]byte
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], working[i]+state[i])
	}
	return out
}

// chacha8Keystream generates n bytes of ChaCha8 keystream seeded by key,
// using nonce 0 and an incrementing block counter.
func chacha8Keystream(key [32]byte, n int) []byte {
	out := make([]byte, 0, n)
	var counter uint64
	for len(out) < n {
		block := chacha8Block(key, counter, 0)
		out = append(out, block[:]...)
		counter++
	}
	return out[:n]
}
