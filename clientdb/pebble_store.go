package clientdb

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebblePageStore is a PageStore backed by a pebble key-value database,
// repurposing a dependency the teacher otherwise used for EVM state
// storage into flat page storage: each page is one key-value pair, keyed
// by its big-endian page number so pages sort and range-scan in order.
type PebblePageStore struct {
	db *pebble.DB
}

// OpenPebblePageStore opens (creating if necessary) a pebble database at
// dir to use as a page store.
func OpenPebblePageStore(dir string) (*PebblePageStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("clientdb: opening pebble store at %s: %w", dir, err)
	}
	return &PebblePageStore{db: db}, nil
}

func pageKey(pageNumber uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], pageNumber)
	return key[:]
}

// ReadPage returns ErrPageNotFound if pageNumber was never written.
func (s *PebblePageStore) ReadPage(pageNumber uint64) (Page, error) {
	value, closer, err := s.db.Get(pageKey(pageNumber))
	if err == pebble.ErrNotFound {
		return Page{}, ErrPageNotFound
	}
	if err != nil {
		return Page{}, fmt.Errorf("clientdb: reading page %d: %w", pageNumber, err)
	}
	defer closer.Close()

	var page Page
	if len(value) != PageSize {
		return Page{}, fmt.Errorf("clientdb: page %d has unexpected length %d", pageNumber, len(value))
	}
	copy(page[:], value)
	return page, nil
}

// WritePage stores page at pageNumber, overwriting any prior contents.
func (s *PebblePageStore) WritePage(pageNumber uint64, page Page) error {
	if err := s.db.Set(pageKey(pageNumber), page[:], pebble.Sync); err != nil {
		return fmt.Errorf("clientdb: writing page %d: %w", pageNumber, err)
	}
	return nil
}

// Close flushes and closes the underlying pebble database.
func (s *PebblePageStore) Close() error {
	return s.db.Close()
}
