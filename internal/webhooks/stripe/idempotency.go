package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventDedupStore is the Redis surface the guard needs. Keys are minted by
// the store so event marks live under its webhook namespace.
type EventDedupStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookEventKey(eventID string) string
}

// IdempotencyGuard marks processor event ids in Redis so redelivered
// webhooks are acknowledged without reprocessing. Marks expire after the
// processor's retry window.
type IdempotencyGuard struct {
	store EventDedupStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store EventDedupStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("event dedup store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMark reserves the event id, reporting true when it was already
// marked by an earlier delivery. The mark records when the first delivery
// arrived, useful when tracing a replay against processor logs.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	seenAt := time.Now().UTC().Format(time.RFC3339Nano)
	set, err := g.store.SetNX(ctx, g.store.WebhookEventKey(eventID), seenAt, g.ttl)
	if err != nil {
		return false, fmt.Errorf("mark webhook event: %w", err)
	}
	return !set, nil
}

// Delete releases the mark so a failed event can be retried by the
// processor.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.store.WebhookEventKey(eventID))
}
