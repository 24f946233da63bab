package erasurecoding

import (
	"bytes"
	"math/rand"
	"testing"
)

func makeSourceShards(t *testing.T, numSource, shardLen int, seed int64) [][]byte {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	shards := make([][]byte, numSource)
	for i := range shards {
		shards[i] = make([]byte, shardLen)
		rng.Read(shards[i])
	}
	return shards
}

func extendAll(t *testing.T, c *Codec, source [][]byte, shardLen int) [][]byte {
	t.Helper()
	parity := make([][]byte, c.NumParity())
	for i := range parity {
		parity[i] = make([]byte, shardLen)
	}
	if err := c.Extend(source, parity); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	return parity
}

func TestExtendThenRecoverNoLossIsNoOp(t *testing.T) {
	const numSource, numParity, shardLen = 4, 2, 64
	c, err := New(numSource, numParity)
	if err != nil {
		t.Fatal(err)
	}

	source := makeSourceShards(t, numSource, shardLen, 1)
	parity := extendAll(t, c, source, shardLen)

	sourceStates := make([]RecoveryShard, numSource)
	for i := range sourceStates {
		sourceStates[i] = RecoveryShard{State: Present, Data: source[i]}
	}
	parityStates := make([]RecoveryShard, numParity)
	for i := range parityStates {
		parityStates[i] = RecoveryShard{State: Present, Data: parity[i]}
	}

	if err := c.Recover(sourceStates, parityStates); err != nil {
		t.Fatalf("Recover: %v", err)
	}
}

// TestRecoverAnyCombinationOfMissingShards checks the MDS property: any
// numParity shards (source, parity, or a mix) can be missing and recovery
// still reproduces the original bytes exactly.
func TestRecoverAnyCombinationOfMissingShards(t *testing.T) {
	const numSource, numParity, shardLen = 6, 3, 128
	c, err := New(numSource, numParity)
	if err != nil {
		t.Fatal(err)
	}

	source := makeSourceShards(t, numSource, shardLen, 42)
	parity := extendAll(t, c, source, shardLen)

	total := numSource + numParity
	combos := [][]int{
		{0},
		{0, 1},
		{numSource},
		{numSource, numSource + 1},
		{0, numSource},
		{1, 3, numSource + 2},
	}

	for _, missing := range combos {
		missingSet := make(map[int]bool)
		for _, m := range missing {
			missingSet[m] = true
		}

		sourceShards := make([]RecoveryShard, numSource)
		originalSource := make([][]byte, numSource)
		for i := range sourceShards {
			buf := append([]byte(nil), source[i]...)
			originalSource[i] = buf
			if missingSet[i] {
				sourceShards[i] = RecoveryShard{State: MissingRecover, Data: make([]byte, shardLen)}
			} else {
				sourceShards[i] = RecoveryShard{State: Present, Data: append([]byte(nil), source[i]...)}
			}
		}

		parityShards := make([]RecoveryShard, numParity)
		for i := range parityShards {
			idx := numSource + i
			if missingSet[idx] {
				parityShards[i] = RecoveryShard{State: MissingRecover, Data: make([]byte, shardLen)}
			} else {
				parityShards[i] = RecoveryShard{State: Present, Data: append([]byte(nil), parity[i]...)}
			}
		}

		if err := c.Recover(sourceShards, parityShards); err != nil {
			t.Fatalf("missing=%v: Recover: %v", missing, err)
		}

		for i := 0; i < numSource; i++ {
			if !bytes.Equal(sourceShards[i].Data, originalSource[i]) {
				t.Fatalf("missing=%v: source shard %d did not recover bitwise", missing, i)
			}
		}
		_ = total
	}
}

func TestRecoverParityCanBeIgnored(t *testing.T) {
	const numSource, numParity, shardLen = 4, 2, 32
	c, err := New(numSource, numParity)
	if err != nil {
		t.Fatal(err)
	}
	source := makeSourceShards(t, numSource, shardLen, 7)
	parity := extendAll(t, c, source, shardLen)

	sourceShards := make([]RecoveryShard, numSource)
	for i := range sourceShards {
		sourceShards[i] = RecoveryShard{State: Present, Data: source[i]}
	}
	parityShards := []RecoveryShard{
		{State: Present, Data: parity[0]},
		{State: MissingIgnore},
	}

	if err := c.Recover(sourceShards, parityShards); err != nil {
		t.Fatalf("Recover: %v", err)
	}
}

func TestRecoverRejectsIgnoredSourceShard(t *testing.T) {
	const numSource, numParity, shardLen = 4, 2, 32
	c, err := New(numSource, numParity)
	if err != nil {
		t.Fatal(err)
	}
	source := makeSourceShards(t, numSource, shardLen, 9)
	parity := extendAll(t, c, source, shardLen)

	sourceShards := make([]RecoveryShard, numSource)
	for i := range sourceShards {
		if i == 1 {
			sourceShards[i] = RecoveryShard{State: MissingIgnore}
			continue
		}
		sourceShards[i] = RecoveryShard{State: Present, Data: source[i]}
	}
	parityShards := []RecoveryShard{
		{State: Present, Data: parity[0]},
		{State: Present, Data: parity[1]},
	}

	if err := c.Recover(sourceShards, parityShards); err == nil {
		t.Fatal("expected error for ignored source shard")
	}
}

func TestRecoverTooFewShardsFails(t *testing.T) {
	const numSource, numParity, shardLen = 4, 2, 32
	c, err := New(numSource, numParity)
	if err != nil {
		t.Fatal(err)
	}
	source := makeSourceShards(t, numSource, shardLen, 3)
	parity := extendAll(t, c, source, shardLen)

	sourceShards := []RecoveryShard{
		{State: Present, Data: source[0]},
		{State: MissingRecover, Data: make([]byte, shardLen)},
		{State: MissingRecover, Data: make([]byte, shardLen)},
		{State: MissingRecover, Data: make([]byte, shardLen)},
	}
	parityShards := []RecoveryShard{
		{State: Present, Data: parity[0]},
		{State: MissingIgnore},
	}

	if err := c.Recover(sourceShards, parityShards); err == nil {
		t.Fatal("expected ErrNotEnoughShards")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(0, 2); err != ErrInvalidShardConfig {
		t.Fatalf("expected ErrInvalidShardConfig, got %v", err)
	}
	if _, err := New(2, 0); err != ErrInvalidShardConfig {
		t.Fatalf("expected ErrInvalidShardConfig, got %v", err)
	}
}

func TestExtendRejectsWrongShardCounts(t *testing.T) {
	c, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	source := makeSourceShards(t, 3, 16, 5)
	parity := make([][]byte, 2)
	for i := range parity {
		parity[i] = make([]byte, 16)
	}
	if err := c.Extend(source, parity); err == nil {
		t.Fatal("expected error for wrong source shard count")
	}
}

func TestExtendRejectsShardSizeMismatch(t *testing.T) {
	c, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	source := makeSourceShards(t, 4, 16, 11)
	source[2] = source[2][:8]
	parity := make([][]byte, 2)
	for i := range parity {
		parity[i] = make([]byte, 16)
	}
	if err := c.Extend(source, parity); err == nil {
		t.Fatal("expected ErrWrongSourceShardByteLength")
	}
}
