// Package erasurecoding wraps a systematic Reed-Solomon code over GF(2^8):
// a fixed number of source shards can be extended with parity shards, and
// any combination of missing shards up to the parity count can later be
// recovered from whatever remains present.
//
// Unlike a hand-rolled XOR parity scheme, which can only recover a missing
// shard when exactly one contributor to a given parity shard is absent,
// this is a proper maximum-distance-separable code: any numParity shards
// (source or parity, in any mixture) can go missing and still be
// recovered, as long as at least numSource shards in total remain.
package erasurecoding

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ErrInvalidShardConfig is returned when a Codec is asked for a
// non-positive number of source or parity shards.
var ErrInvalidShardConfig = errors.New("erasurecoding: invalid shard configuration")

// ErrNotEnoughShards is returned when too few shards are present to
// recover the missing ones.
var ErrNotEnoughShards = errors.New("erasurecoding: not enough shards to recover")

// ErrIgnoredSourceShard is returned when a source shard is marked
// MissingIgnore: unlike parity shards, every source shard must either be
// present or recovered, since it's required to reconstruct the original
// data.
var ErrIgnoredSourceShard = errors.New("erasurecoding: source shard cannot be ignored")

// ErrWrongSourceShardByteLength is returned when a source shard's byte
// length doesn't match the rest of the shard set.
var ErrWrongSourceShardByteLength = errors.New("erasurecoding: wrong source shard byte length")

// ErrWrongParityShardByteLength is returned when a parity shard's byte
// length doesn't match the rest of the shard set.
var ErrWrongParityShardByteLength = errors.New("erasurecoding: wrong parity shard byte length")

// ErrDecoderError wraps an error surfaced by the underlying codec.
var ErrDecoderError = errors.New("erasurecoding: decoder error")

// ShardState describes the state of one shard going into Recover.
type ShardState int

const (
	// Present shards carry real data and are used for recovery.
	Present ShardState = iota
	// MissingRecover shards are absent and must be reconstructed.
	MissingRecover
	// MissingIgnore shards are absent and recovery should not bother
	// reconstructing them. Only valid for parity shards.
	MissingIgnore
)

// RecoveryShard pairs a shard's state with its backing buffer. For
// Present, Data holds the shard's actual bytes. For MissingRecover, Data
// is a caller-owned buffer of the correct shard length that Recover fills
// in place. For MissingIgnore, Data is unused.
type RecoveryShard struct {
	State ShardState
	Data  []byte
}

// Codec is a Reed-Solomon code fixed to numSource source shards and
// numParity parity shards.
type Codec struct {
	numSource int
	numParity int
	enc       reedsolomon.Encoder
}

// New builds a Codec for numSource source shards and numParity parity
// shards, both of which must be positive.
func New(numSource, numParity int) (*Codec, error) {
	if numSource <= 0 || numParity <= 0 {
		return nil, ErrInvalidShardConfig
	}
	enc, err := reedsolomon.New(numSource, numParity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoderError, err)
	}
	return &Codec{numSource: numSource, numParity: numParity, enc: enc}, nil
}

// NumSource returns the codec's fixed number of source shards.
func (c *Codec) NumSource() int { return c.numSource }

// NumParity returns the codec's fixed number of parity shards.
func (c *Codec) NumParity() int { return c.numParity }

// Extend computes parity shards from source shards. source must hold
// exactly NumSource shards, all the same byte length. parity must hold
// exactly NumParity shards of that same length, to be filled in place.
func (c *Codec) Extend(source, parity [][]byte) error {
	if len(source) != c.numSource {
		return fmt.Errorf("%w: expected %d source shards, got %d", ErrInvalidShardConfig, c.numSource, len(source))
	}
	if len(parity) != c.numParity {
		return fmt.Errorf("%w: expected %d parity shards, got %d", ErrInvalidShardConfig, c.numParity, len(parity))
	}

	shardLen := len(source[0])
	for i, s := range source {
		if len(s) != shardLen {
			return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongSourceShardByteLength, i, len(s), shardLen)
		}
	}
	for i, p := range parity {
		if len(p) != shardLen {
			return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongParityShardByteLength, i, len(p), shardLen)
		}
	}

	combined := make([][]byte, 0, c.numSource+c.numParity)
	combined = append(combined, source...)
	combined = append(combined, parity...)

	if err := c.enc.Encode(combined); err != nil {
		return fmt.Errorf("%w: %w", ErrDecoderError, err)
	}
	return nil
}

// Recover reconstructs missing source and parity shards in place. source
// must hold exactly NumSource entries and must not contain MissingIgnore;
// parity must hold exactly NumParity entries. Every MissingRecover shard's
// Data buffer must already be sized to the common shard length and is
// filled on success.
func (c *Codec) Recover(source, parity []RecoveryShard) error {
	if len(source) != c.numSource {
		return fmt.Errorf("%w: expected %d source shards, got %d", ErrInvalidShardConfig, c.numSource, len(source))
	}
	if len(parity) != c.numParity {
		return fmt.Errorf("%w: expected %d parity shards, got %d", ErrInvalidShardConfig, c.numParity, len(parity))
	}

	shardLen := 0
	for _, s := range source {
		if s.State != MissingIgnore && len(s.Data) > 0 {
			shardLen = len(s.Data)
			break
		}
	}
	if shardLen == 0 {
		for _, p := range parity {
			if p.State != MissingIgnore && len(p.Data) > 0 {
				shardLen = len(p.Data)
				break
			}
		}
	}
	if shardLen == 0 {
		return fmt.Errorf("%w: no shard carries a usable byte length", ErrNotEnoughShards)
	}

	total := c.numSource + c.numParity
	combined := make([][]byte, total)
	required := make([]bool, total)
	present := 0

	for i, s := range source {
		switch s.State {
		case Present:
			if len(s.Data) != shardLen {
				return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongSourceShardByteLength, i, len(s.Data), shardLen)
			}
			combined[i] = s.Data
			present++
		case MissingRecover:
			if len(s.Data) != shardLen {
				return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongSourceShardByteLength, i, len(s.Data), shardLen)
			}
			required[i] = true
		case MissingIgnore:
			return fmt.Errorf("%w: index %d", ErrIgnoredSourceShard, i)
		}
	}

	for i, p := range parity {
		idx := c.numSource + i
		switch p.State {
		case Present:
			if len(p.Data) != shardLen {
				return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongParityShardByteLength, i, len(p.Data), shardLen)
			}
			combined[idx] = p.Data
			present++
		case MissingRecover:
			if len(p.Data) != shardLen {
				return fmt.Errorf("%w: shard %d has length %d, expected %d", ErrWrongParityShardByteLength, i, len(p.Data), shardLen)
			}
			required[idx] = true
		case MissingIgnore:
			// Left nil and not required: the codec won't bother with it.
		}
	}

	if present < c.numSource {
		return fmt.Errorf("%w: have %d shards, need %d", ErrNotEnoughShards, present, c.numSource)
	}

	if err := c.enc.ReconstructSome(combined, required); err != nil {
		return fmt.Errorf("%w: %w", ErrDecoderError, err)
	}

	for i, s := range source {
		if s.State == MissingRecover {
			copy(s.Data, combined[i])
		}
	}
	for i, p := range parity {
		if p.State == MissingRecover {
			copy(p.Data, combined[c.numSource+i])
		}
	}

	return nil
}
