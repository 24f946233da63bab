// Package merkletree implements the three Merkle tree variants the
// consensus core relies on: a balanced tree over a power-of-two number of
// leaves (used for record roots and segment roots), an unbalanced tree over
// any number of leaves up to a declared maximum (used where the leaf count
// isn't known to be a power of two ahead of time), and a sparse tree over
// 2^k leaves where most leaves are empty (used for membership proofs over
// huge, mostly-empty key spaces).
//
// All three variants share the same 32-byte pair-hash function.
package merkletree

import "lukechampine.com/blake3"

// HashSize is the size in bytes of every node in every tree variant.
const HashSize = 32

// Hash is a 32-byte tree node (leaf or internal).
type Hash [HashSize]byte

// pairHash computes H(left ‖ right) using BLAKE3.
func pairHash(left, right Hash) Hash {
	h := blake3.New(HashSize, nil)
	h.Write(left[:])
	h.Write(right[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// leafHash computes the initial hash of a leaf's raw bytes. Trees in this
// package operate on pre-hashed 32-byte leaves, so this is only used by
// callers that need to hash arbitrary-length leaf data before insertion.
func leafHash(data []byte) Hash {
	sum := blake3.Sum256(data)
	return Hash(sum)
}

// LeafHash exposes leafHash to callers outside the package that need to hash
// raw leaf bytes before building a tree (e.g. hashing a record's chunks).
func LeafHash(data []byte) Hash {
	return leafHash(data)
}
