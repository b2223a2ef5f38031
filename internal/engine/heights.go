package engine

import (
	"context"
	"time"
)

// HeightSource supplies the block height quotes and heartbeats are stamped with.
type HeightSource interface {
	Height(ctx context.Context) (uint64, error)
}

// Heartbeat derives heights from the wall clock: Start at Since, then one
// block per BlockTime.
type Heartbeat struct {
	Start     uint64
	Since     time.Time
	BlockTime time.Duration

	now func() time.Time
}

// NewHeartbeat starts counting blocks from start as of now.
func NewHeartbeat(start uint64, blockTime time.Duration) *Heartbeat {
	return &Heartbeat{Start: start, Since: time.Now(), BlockTime: blockTime, now: time.Now}
}

func (h *Heartbeat) Height(context.Context) (uint64, error) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	elapsed := now().Sub(h.Since)
	if elapsed < 0 || h.BlockTime <= 0 {
		return h.Start, nil
	}
	return h.Start + uint64(elapsed/h.BlockTime), nil
}

// StaticHeight always reports the same height.
type StaticHeight uint64

func (h StaticHeight) Height(context.Context) (uint64, error) { return uint64(h), nil }
