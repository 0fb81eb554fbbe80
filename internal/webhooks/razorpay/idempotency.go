package rzpwebhook

import (
	"context"
	"time"

	"github.com/wittyvishnu/starfashion-backend/pkg/redis"
)

const idempotencyTTL = 24 * time.Hour

// Guard deduplicates webhook deliveries by gateway event id. Razorpay
// retries deliveries until acknowledged, so replays of an already handled
// event are expected traffic.
type Guard struct {
	store redis.IdempotencyStore
}

// NewGuard wraps an idempotency store. A nil store disables deduplication.
func NewGuard(store redis.IdempotencyStore) *Guard {
	return &Guard{store: store}
}

// CheckAndMark records the event id and reports whether this delivery is the
// first. Storage failures fail open: a duplicate delivery is harmless because
// every handler is idempotent, a dropped event is not.
func (g *Guard) CheckAndMark(ctx context.Context, eventID string) bool {
	if g == nil || g.store == nil || eventID == "" {
		return true
	}
	first, err := g.store.SetNX(ctx, g.store.IdempotencyKey("rzp-webhook", eventID), "1", idempotencyTTL)
	if err != nil {
		return true
	}
	return first
}

// Release forgets a marked event id so the gateway's retry can be processed
// after a handler failure.
func (g *Guard) Release(ctx context.Context, eventID string) {
	if g == nil || g.store == nil || eventID == "" {
		return
	}
	_ = g.store.Del(ctx, g.store.IdempotencyKey("rzp-webhook", eventID))
}
