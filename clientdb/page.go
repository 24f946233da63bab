// Package clientdb implements an append-only, page-backed log of framed
// storage items: fixed-size pages hold self-describing, checksummed
// records that can be validated independently of everything around them,
// so a torn write at any page boundary is detectable rather than
// corrupting silently.
package clientdb

import "errors"

// PageSize is the fixed size of one page. Storage items are always
// written starting at a page boundary and padded out to a whole number of
// pages.
const PageSize = 4096

// Page is one fixed-size unit of storage.
type Page [PageSize]byte

// ErrPageNotFound is returned by a PageStore when the requested page has
// never been written.
var ErrPageNotFound = errors.New("clientdb: page not found")

// PageStore is the pluggable page-addressed backend storage items are
// written through. Implementations need not buffer or cache; framing and
// checksumming are done above this layer by Write and Read.
type PageStore interface {
	ReadPage(pageNumber uint64) (Page, error)
	WritePage(pageNumber uint64, page Page) error
	Close() error
}
