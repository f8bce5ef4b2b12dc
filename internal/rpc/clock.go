package rpc

import (
	"context"
	"time"

	"github.com/regolith-labs/ore-market/internal/market"
)

// SlotClock supplies the slot and timestamp a swap executes under.
type SlotClock interface {
	Now(ctx context.Context) (market.Clock, error)
}

// RemoteClock derives the clock from the chain via getSlot. The timestamp
// is stamped from the host clock; block time lags by a slot or more and
// the engine only needs second resolution.
type RemoteClock struct {
	client *Client
}

// NewRemoteClock creates a clock backed by an RPC client.
func NewRemoteClock(client *Client) *RemoteClock {
	return &RemoteClock{client: client}
}

func (r *RemoteClock) Now(ctx context.Context) (market.Clock, error) {
	slot, err := r.client.GetSlot(ctx)
	if err != nil {
		return market.Clock{}, err
	}
	return market.Clock{
		Slot:          slot,
		UnixTimestamp: time.Now().Unix(),
	}, nil
}

// LocalClock synthesizes slots from wall time at a fixed slot duration.
// Used in dev mode where no validator is running.
type LocalClock struct {
	start    time.Time
	slotTime time.Duration
}

// NewLocalClock creates a clock that starts counting slots from now.
func NewLocalClock(slotTime time.Duration) *LocalClock {
	if slotTime <= 0 {
		slotTime = 400 * time.Millisecond
	}
	return &LocalClock{start: time.Now(), slotTime: slotTime}
}

func (l *LocalClock) Now(ctx context.Context) (market.Clock, error) {
	now := time.Now()
	return market.Clock{
		Slot:          uint64(now.Sub(l.start) / l.slotTime),
		UnixTimestamp: now.Unix(),
	}, nil
}
