package clientdb

import (
	"errors"
	"testing"
)

func TestNumPagesRoundsUpToWholePages(t *testing.T) {
	cases := []struct {
		bodySize int
		want     int
	}{
		{0, 1},
		{PageSize - prefixSize - suffixSize, 1},
		{PageSize - prefixSize - suffixSize + 1, 2},
		{3 * PageSize, 4},
	}
	for _, c := range cases {
		if got := NumPages(c.bodySize); got != c.want {
			t.Errorf("NumPages(%d) = %d, want %d", c.bodySize, got, c.want)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	item := Item{
		SequenceNumber: 42,
		Variant:        7,
		Body:           []byte("a piece of archived history"),
	}
	pages := Write(item)
	got, err := Read(pages)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.SequenceNumber != item.SequenceNumber || got.Variant != item.Variant {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, item)
	}
	if string(got.Body) != string(item.Body) {
		t.Fatalf("round trip body mismatch: got %q, want %q", got.Body, item.Body)
	}
}

func TestWriteReadRoundTripEmptyBody(t *testing.T) {
	item := Item{SequenceNumber: 1, Variant: 0, Body: nil}
	pages := Write(item)
	got, err := Read(pages)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Body) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(got.Body))
	}
}

func TestWriteReadRoundTripSpansMultiplePages(t *testing.T) {
	body := make([]byte, 3*PageSize)
	for i := range body {
		body[i] = byte(i)
	}
	item := Item{SequenceNumber: 99, Variant: 3, Body: body}
	pages := Write(item)
	if len(pages) != NumPages(len(body)) {
		t.Fatalf("Write produced %d pages, want %d", len(pages), NumPages(len(body)))
	}
	got, err := Read(pages)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got.Body) != string(body) {
		t.Fatalf("multi-page round trip corrupted body")
	}
}

func TestReadDetectsPrefixChecksumMismatch(t *testing.T) {
	pages := Write(Item{SequenceNumber: 1, Variant: 1, Body: []byte("hello")})
	// Corrupt a prefix field (sequence number) without touching checksum1,
	// so checksum1 no longer matches the recomputed prefix.
	pages[0][0] ^= 0xFF

	_, err := Read(pages)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestReadDetectsRepeatChecksumMismatch(t *testing.T) {
	pages := Write(Item{SequenceNumber: 2, Variant: 1, Body: []byte("hello world")})
	flatLen := prefixSize + len("hello world") + suffixSize
	repeatOffset := flatLen - checksumSize
	pageIdx := repeatOffset / PageSize
	byteIdx := repeatOffset % PageSize
	pages[pageIdx][byteIdx] ^= 0xFF

	_, err := Read(pages)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, ErrRepeatChecksumMismatch) {
		t.Fatalf("expected ErrRepeatChecksumMismatch, got %v", err)
	}
}

func TestReadDetectsBodyChecksumMismatch(t *testing.T) {
	body := []byte("hello world")
	pages := Write(Item{SequenceNumber: 3, Variant: 1, Body: body})
	bodyChecksumOffset := prefixSize + len(body)
	pageIdx := bodyChecksumOffset / PageSize
	byteIdx := bodyChecksumOffset % PageSize
	pages[pageIdx][byteIdx] ^= 0xFF

	_, err := Read(pages)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, ErrStorageItemChecksumMismatch) {
		t.Fatalf("expected ErrStorageItemChecksumMismatch, got %v", err)
	}
}

func TestReadDetectsTruncatedBuffer(t *testing.T) {
	pages := Write(Item{SequenceNumber: 4, Variant: 1, Body: []byte("a body longer than one page worth of padding")})
	_, err := Read(pages[:0])
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestMemoryPageStoreRoundTrip(t *testing.T) {
	store := NewMemoryPageStore()
	var page Page
	copy(page[:], "a page of content")

	if err := store.WritePage(5, page); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	got, err := store.ReadPage(5)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if got != page {
		t.Fatal("read page does not match written page")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMemoryPageStoreUnwrittenPageNotFound(t *testing.T) {
	store := NewMemoryPageStore()
	_, err := store.ReadPage(123)
	if err != ErrPageNotFound {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}
