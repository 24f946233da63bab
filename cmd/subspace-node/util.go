package main

import (
	"time"

	"github.com/ab-network/subspace-core/primitives"
)

const shutdownTimeout = 5 * time.Second

func primitivesSlotNumber(n uint64) primitives.SlotNumber {
	return primitives.SlotNumber(n)
}
