package clientdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"lukechampine.com/blake3"
)

// Errors a storage item read can fail with. Each names a specific kind of
// mismatch rather than collapsing into one generic "corrupt" error, so a
// caller scanning a log after an unclean shutdown can distinguish a torn
// write (checksum mismatch right at the tail) from real corruption deeper
// in the log.
var (
	ErrBufferTooSmall              = errors.New("clientdb: buffer too small")
	ErrNeedMoreBytes               = errors.New("clientdb: need more bytes than the page span provides")
	ErrUnknownVariant              = errors.New("clientdb: unknown storage item variant")
	ErrChecksumMismatch            = errors.New("clientdb: prefix checksum mismatch")
	ErrRepeatChecksumMismatch      = errors.New("clientdb: prefix checksum repeat mismatch")
	ErrStorageItemChecksumMismatch = errors.New("clientdb: storage item body checksum mismatch")
)

const (
	checksumSize = 32

	// prefixSize is sequence_number(8) + variant(1) + body_size(4) +
	// checksum1(32), padded up to the next 16-byte (128-bit) boundary.
	prefixRawSize = 8 + 1 + 4 + checksumSize
	prefixSize    = 48 // prefixRawSize rounded up to a multiple of 16

	// suffixSize is the body checksum plus a repeat of checksum1, used to
	// detect a write torn between the prefix and the tail.
	suffixSize = checksumSize * 2
)

// Item is one framed, checksummed record: a sequence number, a caller-
// defined variant tag, and an opaque body.
type Item struct {
	SequenceNumber uint64
	Variant        uint8
	Body           []byte
}

// NumPages returns how many whole pages are required to hold a storage item
// whose body is bodySize bytes.
func NumPages(bodySize int) int {
	total := prefixSize + bodySize + suffixSize
	return (total + PageSize - 1) / PageSize
}

// checksum1 hashes the prefix fields up to (not including) checksum1
// itself: sequence_number | variant | body_size.
func checksum1(sequenceNumber uint64, variant uint8, bodySize uint32) [checksumSize]byte {
	var buf [8 + 1 + 4]byte
	binary.LittleEndian.PutUint64(buf[0:8], sequenceNumber)
	buf[8] = variant
	binary.LittleEndian.PutUint32(buf[9:13], bodySize)
	return blake3.Sum256(buf[:])
}

// Write frames item into a flat byte buffer laid out as
// sequence_number | variant | body_size | checksum1 | padding to 16B |
// body | body_checksum | checksum1_repeat, and splits it across pages,
// each exactly PageSize bytes; the final page is zero-padded.
func Write(item Item) []Page {
	bodySize := uint32(len(item.Body))
	sum1 := checksum1(item.SequenceNumber, item.Variant, bodySize)
	bodySum := blake3.Sum256(item.Body)

	total := prefixSize + len(item.Body) + suffixSize
	flat := make([]byte, total)

	binary.LittleEndian.PutUint64(flat[0:8], item.SequenceNumber)
	flat[8] = item.Variant
	binary.LittleEndian.PutUint32(flat[9:13], bodySize)
	copy(flat[13:13+checksumSize], sum1[:])
	// flat[13+checksumSize : prefixSize] is left zeroed as alignment padding.

	copy(flat[prefixSize:prefixSize+len(item.Body)], item.Body)

	suffixStart := prefixSize + len(item.Body)
	copy(flat[suffixStart:suffixStart+checksumSize], bodySum[:])
	copy(flat[suffixStart+checksumSize:suffixStart+suffixSize], sum1[:])

	numPages := (total + PageSize - 1) / PageSize
	pages := make([]Page, numPages)
	for i := range pages {
		start := i * PageSize
		end := start + PageSize
		if end > len(flat) {
			end = len(flat)
		}
		copy(pages[i][:], flat[start:end])
	}
	return pages
}

// Read is the inverse of Write: it validates the prefix checksum, its
// repeat at the tail, and the body checksum, failing with a specific
// sentinel on the first mismatch found.
func Read(pages []Page) (Item, error) {
	flat := make([]byte, 0, len(pages)*PageSize)
	for _, p := range pages {
		flat = append(flat, p[:]...)
	}

	if len(flat) < prefixSize {
		return Item{}, fmt.Errorf("%w: have %d bytes, need at least %d for the prefix", ErrBufferTooSmall, len(flat), prefixSize)
	}

	sequenceNumber := binary.LittleEndian.Uint64(flat[0:8])
	variant := flat[8]
	bodySize := binary.LittleEndian.Uint32(flat[9:13])
	wantSum1 := checksum1(sequenceNumber, variant, bodySize)

	gotSum1 := flat[13 : 13+checksumSize]
	if !bytes.Equal(wantSum1[:], gotSum1) {
		return Item{}, fmt.Errorf("%w: expected %x, got %x", ErrChecksumMismatch, wantSum1, gotSum1)
	}

	bodyStart := prefixSize
	bodyEnd := bodyStart + int(bodySize)
	suffixEnd := bodyEnd + suffixSize
	if suffixEnd > len(flat) {
		return Item{}, fmt.Errorf("%w: %d", ErrNeedMoreBytes, suffixEnd-len(flat))
	}

	body := flat[bodyStart:bodyEnd]
	bodyChecksum := flat[bodyEnd : bodyEnd+checksumSize]
	repeatChecksum := flat[bodyEnd+checksumSize : suffixEnd]

	if !bytes.Equal(wantSum1[:], repeatChecksum) {
		return Item{}, fmt.Errorf("%w: expected %x, got %x", ErrRepeatChecksumMismatch, wantSum1, repeatChecksum)
	}

	wantBodySum := blake3.Sum256(body)
	if !bytes.Equal(wantBodySum[:], bodyChecksum) {
		return Item{}, fmt.Errorf("%w: expected %x, got %x", ErrStorageItemChecksumMismatch, wantBodySum, bodyChecksum)
	}

	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	return Item{SequenceNumber: sequenceNumber, Variant: variant, Body: bodyCopy}, nil
}
