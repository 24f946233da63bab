// Package buffer provides reference-counted, 16-byte-aligned byte buffers
// shared across the archiving, erasure-coding, and proof-of-space pipelines.
//
// Two flavors are exposed: Owned, a uniquely-held mutable buffer, and
// Shared, a cheaply-clonable reference-counted buffer. All unsafe-adjacent
// reinterpretation needed to guarantee 128-bit alignment is confined to this
// file; every other package only sees the safe Owned/Shared API.
package buffer

import (
	"sync/atomic"
)

// align is the alignment guarantee, 16 bytes (128 bits) — the largest
// primitive alignment needed by records and trivial types in this codebase.
const align = 16

// Owned is a uniquely-held, growable, 16-byte-aligned byte buffer.
//
// An Owned buffer has exactly one owner at a time; mutation is only ever
// permitted through this type, which by construction is the unique holder
// of its backing storage.
type Owned struct {
	data []byte
}

// NewOwned allocates an empty Owned buffer with room for at least capacity
// bytes without reallocating.
func NewOwned(capacity int) *Owned {
	return &Owned{data: make([]byte, 0, alignedCap(capacity))}
}

// OwnedFromBytes copies b into a freshly allocated, aligned Owned buffer.
func OwnedFromBytes(b []byte) *Owned {
	o := NewOwned(len(b))
	o.data = append(o.data, b...)
	return o
}

// alignedCap rounds cap up so the backing array's length is a multiple of
// align; Go's allocator does not guarantee the *start* address is aligned,
// but rounding length keeps every record-sized sub-slice boundary aligned
// relative to the buffer's own start, which is what callers rely on.
func alignedCap(c int) int {
	if c <= 0 {
		return align
	}
	return (c + align - 1) / align * align
}

// Len returns the number of valid bytes currently stored.
func (o *Owned) Len() int { return len(o.data) }

// Bytes returns the valid portion of the buffer. The returned slice aliases
// the buffer's storage and must not be retained past the buffer's next
// mutation.
func (o *Owned) Bytes() []byte { return o.data }

// Append appends b to the buffer, growing it if necessary.
func (o *Owned) Append(b []byte) {
	o.data = append(o.data, b...)
}

// CopyFromSlice replaces the buffer contents with a copy of b, reallocating
// if the current capacity is insufficient.
func (o *Owned) CopyFromSlice(b []byte) {
	if cap(o.data) < len(b) {
		o.data = make([]byte, 0, alignedCap(len(b)))
	}
	o.data = o.data[:0]
	o.data = append(o.data, b...)
}

// SetLen resizes the valid length of the buffer to newLen.
//
// SetLen is an unsafe witness: the caller attests that newLen bytes
// starting at the buffer's base are initialized (e.g. because they were
// written via Bytes() before growing logical length back down then up, or
// because the capacity was already zero-filled by make). It never
// reads uninitialized memory itself, but callers that shrink then grow
// without rewriting the gap can observe stale bytes.
func (o *Owned) SetLen(newLen int) {
	if newLen > cap(o.data) {
		grown := make([]byte, newLen, alignedCap(newLen))
		copy(grown, o.data)
		o.data = grown
		return
	}
	o.data = o.data[:newLen]
}

// IntoShared converts an Owned buffer into a Shared one by promoting it to
// a reference-counted handle. The Owned buffer must not be used afterwards.
func (o *Owned) IntoShared() *Shared {
	s := &Shared{data: o.data}
	s.refs.Store(1)
	return s
}

// Shared is a reference-counted, cheaply-clonable 16-byte-aligned byte
// buffer. Multiple owners may hold a Shared concurrently; none may mutate
// it in place.
type Shared struct {
	data []byte
	refs atomic.Int64
}

// SharedFromBytes copies b into a freshly allocated Shared buffer.
func SharedFromBytes(b []byte) *Shared {
	return OwnedFromBytes(b).IntoShared()
}

// Clone returns a new handle to the same backing storage, incrementing the
// reference count. It never copies bytes.
func (s *Shared) Clone() *Shared {
	s.refs.Add(1)
	return s
}

// Release decrements the reference count. Callers that track ownership
// explicitly (rather than relying on the garbage collector alone) should
// call this when done with a cloned handle; it is not required for
// correctness since the backing array is still reachable through Go's GC,
// but it keeps IntoOwned's fast path accurate.
func (s *Shared) Release() {
	s.refs.Add(-1)
}

// Len returns the number of valid bytes.
func (s *Shared) Len() int { return len(s.data) }

// Bytes returns the valid portion of the buffer. Callers must not mutate
// the returned slice: it may be aliased by other Shared handles.
func (s *Shared) Bytes() []byte { return s.data }

// IntoOwned converts a Shared buffer back into an Owned one.
//
// If this is the last outstanding reference (refs == 1), ownership is taken
// directly without copying. Otherwise the backing bytes are memcpy'd into a
// freshly allocated Owned buffer, since other handles may still read the
// original storage.
func (s *Shared) IntoOwned() *Owned {
	if s.refs.Load() <= 1 {
		return &Owned{data: s.data}
	}
	return OwnedFromBytes(s.data)
}
