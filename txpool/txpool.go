// Package txpool tracks transactions awaiting inclusion, keyed by hash and
// cross-indexed by the block they were created against, with a bounded
// history of which best blocks have authorized (re-)included each one.
package txpool

import (
	"errors"
	"sync"

	"github.com/ab-network/subspace-core/primitives"
)

// Limits bounds the pool's size.
type Limits struct {
	Count int
	Size  int // bytes, sum of every transaction's buffer length
}

// DefaultLimits returns conservative pool limits.
func DefaultLimits() Limits {
	return Limits{Count: 100_000, Size: 64 * 1024 * 1024}
}

// Config configures a Pool.
type Config struct {
	Limits                    Limits
	PruningDepth              uint64
	AuthorizationHistoryDepth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limits:                    DefaultLimits(),
		PruningDepth:              256,
		AuthorizationHistoryDepth: 8,
	}
}

var (
	ErrAlreadyExists       = errors.New("txpool: transaction already exists")
	ErrBlockNotFound       = errors.New("txpool: creation block is not the current best or an ancestor tracked by the pool")
	ErrTooManyTransactions = errors.New("txpool: too many transactions")
	ErrTotalSizeTooLarge   = errors.New("txpool: total size too large")
)

// Transaction is the unit the pool tracks: an opaque hash, the block it was
// created against, and its wire bytes (only the byte length matters to the
// pool's size budget).
type Transaction struct {
	Hash        primitives.Hash
	BlockHash   primitives.Hash
	BlockNumber primitives.BlockNumber
	Buffer      []byte
}

// authorization is one (block_number, block_hash) entry recording that a
// best block has included or re-validated a transaction.
type authorization struct {
	blockNumber primitives.BlockNumber
	blockHash   primitives.Hash
}

// entry is a pool transaction plus its authorization history. A
// transaction with an empty history is in the "New" state from spec; one
// with at least one entry is "Authorized".
type entry struct {
	tx      Transaction
	history []authorization // front = most recent, per mark_authorized
}

func (e *entry) authorized() bool { return len(e.history) > 0 }

// Pool is a single-owner transaction pool: every exported method expects
// to be called from one goroutine at a time; the mutex below only guards
// against accidental concurrent misuse rather than being load-bearing for
// correctness.
type Pool struct {
	mu     sync.Mutex
	config Config

	byHash   map[primitives.Hash]*entry
	byBlock  map[primitives.Hash]map[primitives.Hash]struct{} // block hash -> set of tx hashes created there
	totalSize int

	knownBlocks map[primitives.Hash]primitives.BlockNumber
	bestNumber  primitives.BlockNumber
	haveBest    bool
}

// New builds an empty pool.
func New(config Config) *Pool {
	return &Pool{
		config:      config,
		byHash:      make(map[primitives.Hash]*entry),
		byBlock:     make(map[primitives.Hash]map[primitives.Hash]struct{}),
		knownBlocks: make(map[primitives.Hash]primitives.BlockNumber),
	}
}

// Add inserts tx. It fails if tx's creation block isn't known to the pool,
// tx is already present, or inserting it would exceed the configured count
// or size limits.
func (p *Pool) Add(tx Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byHash[tx.Hash]; ok {
		return ErrAlreadyExists
	}
	if _, ok := p.knownBlocks[tx.BlockHash]; !ok {
		return ErrBlockNotFound
	}
	if len(p.byHash) >= p.config.Limits.Count {
		return ErrTooManyTransactions
	}
	if p.totalSize+len(tx.Buffer) > p.config.Limits.Size {
		return ErrTotalSizeTooLarge
	}

	p.byHash[tx.Hash] = &entry{tx: tx}
	if p.byBlock[tx.BlockHash] == nil {
		p.byBlock[tx.BlockHash] = make(map[primitives.Hash]struct{})
	}
	p.byBlock[tx.BlockHash][tx.Hash] = struct{}{}
	p.totalSize += len(tx.Buffer)
	return nil
}

// MarkAuthorized records that blockHash (at blockNumber) has authorized
// txHash, pushing to the front of its history and evicting the oldest
// entry once the history reaches AuthorizationHistoryDepth. It is a no-op
// if txHash isn't in the pool.
func (p *Pool) MarkAuthorized(txHash primitives.Hash, blockNumber primitives.BlockNumber, blockHash primitives.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.byHash[txHash]
	if !ok {
		return
	}
	e.history = append([]authorization{{blockNumber: blockNumber, blockHash: blockHash}}, e.history...)
	if len(e.history) > p.config.AuthorizationHistoryDepth {
		e.history = e.history[:p.config.AuthorizationHistoryDepth]
	}
}

// AddBestBlock registers (n, h) as the new best block: transactions whose
// creation block now falls outside [n - pruning_depth, n) are dropped
// entirely, and authorization entries at blocks >= n are dropped as stale
// (they describe a future the chain hasn't reached, from a reorg).
func (p *Pool) AddBestBlock(n primitives.BlockNumber, h primitives.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.knownBlocks[h] = n
	p.bestNumber = n
	p.haveBest = true

	var low primitives.BlockNumber
	if uint64(n) > p.config.PruningDepth {
		low = primitives.BlockNumber(uint64(n) - p.config.PruningDepth)
	}

	for hash, e := range p.byHash {
		if e.tx.BlockNumber < low || e.tx.BlockNumber >= n {
			p.removeLocked(hash)
			continue
		}
		kept := e.history[:0]
		for _, a := range e.history {
			if a.blockNumber < n {
				kept = append(kept, a)
			}
		}
		e.history = kept
	}
}

// Remove drops every transaction named in txs, if present.
func (p *Pool) Remove(txs []primitives.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range txs {
		p.removeLocked(h)
	}
}

func (p *Pool) removeLocked(txHash primitives.Hash) {
	e, ok := p.byHash[txHash]
	if !ok {
		return
	}
	delete(p.byHash, txHash)
	p.totalSize -= len(e.tx.Buffer)
	if set, ok := p.byBlock[e.tx.BlockHash]; ok {
		delete(set, txHash)
		if len(set) == 0 {
			delete(p.byBlock, e.tx.BlockHash)
		}
	}
}

// Contains reports whether h is currently in the pool.
func (p *Pool) Contains(h primitives.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byHash[h]
	return ok
}

// Iter returns every transaction currently in the pool, in an unspecified
// order.
func (p *Pool) Iter() []Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Transaction, 0, len(p.byHash))
	for _, e := range p.byHash {
		out = append(out, e.tx)
	}
	return out
}

// Len returns the number of transactions currently in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byHash)
}

// TotalSize returns the sum of every tracked transaction's buffer length.
func (p *Pool) TotalSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalSize
}
