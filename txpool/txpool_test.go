package txpool

import (
	"testing"

	"github.com/ab-network/subspace-core/primitives"
)

func hash(b byte) primitives.Hash {
	var h primitives.Hash
	h[0] = b
	return h
}

func TestAddRejectsUnknownCreationBlock(t *testing.T) {
	p := New(DefaultConfig())
	err := p.Add(Transaction{Hash: hash(1), BlockHash: hash(100), BlockNumber: 100})
	if err != ErrBlockNotFound {
		t.Fatalf("got %v, want ErrBlockNotFound", err)
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	p := New(DefaultConfig())
	p.AddBestBlock(100, hash(100))

	tx := Transaction{Hash: hash(1), BlockHash: hash(100), BlockNumber: 100}
	if err := p.Add(tx); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(tx); err != ErrAlreadyExists {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
}

func TestAddRejectsOverCount(t *testing.T) {
	config := DefaultConfig()
	config.Limits.Count = 1
	p := New(config)
	p.AddBestBlock(100, hash(100))

	if err := p.Add(Transaction{Hash: hash(1), BlockHash: hash(100), BlockNumber: 100}); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(Transaction{Hash: hash(2), BlockHash: hash(100), BlockNumber: 100}); err != ErrTooManyTransactions {
		t.Fatalf("got %v, want ErrTooManyTransactions", err)
	}
}

func TestAddRejectsOverSize(t *testing.T) {
	config := DefaultConfig()
	config.Limits.Size = 4
	p := New(config)
	p.AddBestBlock(100, hash(100))

	err := p.Add(Transaction{Hash: hash(1), BlockHash: hash(100), BlockNumber: 100, Buffer: make([]byte, 5)})
	if err != ErrTotalSizeTooLarge {
		t.Fatalf("got %v, want ErrTotalSizeTooLarge", err)
	}
}

// TestPruningDropsTransactionWhoseCreationBlockLeavesTheWindow exercises
// pruning_depth=4, authorization_history_depth=2: a transaction created at
// block 100 is authorized at 100 and 101, then the best block advances to
// 105, at which point block 100 falls outside [101, 105) and the
// transaction must be dropped.
func TestPruningDropsTransactionWhoseCreationBlockLeavesTheWindow(t *testing.T) {
	config := Config{
		Limits:                    Limits{Count: 10, Size: 64 * 1024},
		PruningDepth:              4,
		AuthorizationHistoryDepth: 2,
	}
	p := New(config)

	p.AddBestBlock(100, hash(100))

	tx1 := Transaction{Hash: hash(1), BlockHash: hash(100), BlockNumber: 100}
	if err := p.Add(tx1); err != nil {
		t.Fatal(err)
	}
	p.MarkAuthorized(tx1.Hash, 100, hash(100))

	p.AddBestBlock(101, hash(101))
	p.MarkAuthorized(tx1.Hash, 101, hash(101))

	if !p.Contains(tx1.Hash) {
		t.Fatal("tx1 should still be tracked at best block 101")
	}

	p.AddBestBlock(105, hash(105))

	if p.Contains(tx1.Hash) {
		t.Fatal("tx1's creation block (100) left the pruning window [101, 105) and should have been dropped")
	}
}

func TestMarkAuthorizedCapsHistoryDepth(t *testing.T) {
	config := Config{
		Limits:                    Limits{Count: 10, Size: 64 * 1024},
		PruningDepth:              100,
		AuthorizationHistoryDepth: 2,
	}
	p := New(config)
	p.AddBestBlock(1, hash(1))

	tx := Transaction{Hash: hash(1), BlockHash: hash(1), BlockNumber: 1}
	if err := p.Add(tx); err != nil {
		t.Fatal(err)
	}

	p.MarkAuthorized(tx.Hash, 1, hash(1))
	p.MarkAuthorized(tx.Hash, 2, hash(2))
	p.MarkAuthorized(tx.Hash, 3, hash(3))

	e := p.byHash[tx.Hash]
	if len(e.history) != 2 {
		t.Fatalf("got %d history entries, want 2 (capped)", len(e.history))
	}
	if e.history[0].blockNumber != 3 {
		t.Fatalf("most recent authorization should be at the front, got block %d", e.history[0].blockNumber)
	}
}

func TestRemoveDropsTransaction(t *testing.T) {
	p := New(DefaultConfig())
	p.AddBestBlock(1, hash(1))

	tx := Transaction{Hash: hash(1), BlockHash: hash(1), BlockNumber: 1, Buffer: []byte("abc")}
	if err := p.Add(tx); err != nil {
		t.Fatal(err)
	}
	if p.TotalSize() != 3 {
		t.Fatalf("got total size %d, want 3", p.TotalSize())
	}

	p.Remove([]primitives.Hash{tx.Hash})

	if p.Contains(tx.Hash) {
		t.Fatal("transaction should have been removed")
	}
	if p.TotalSize() != 0 {
		t.Fatalf("got total size %d, want 0 after removal", p.TotalSize())
	}
}

func TestIterReturnsAllTransactions(t *testing.T) {
	p := New(DefaultConfig())
	p.AddBestBlock(1, hash(1))

	for i := byte(1); i <= 3; i++ {
		if err := p.Add(Transaction{Hash: hash(i), BlockHash: hash(1), BlockNumber: 1}); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(p.Iter()); got != 3 {
		t.Fatalf("got %d transactions, want 3", got)
	}
	if p.Len() != 3 {
		t.Fatalf("got Len() = %d, want 3", p.Len())
	}
}
