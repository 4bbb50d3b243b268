package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "payment:event:"

// EventLedger claims provider event ids with SETNX so concurrent or repeated
// deliveries are processed once per TTL window.
type EventLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventLedger(client *redis.Client, ttl time.Duration) *EventLedger {
	return &EventLedger{client: client, ttl: ttl}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

func (l *EventLedger) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: claim %s: %w", eventID, err)
	}
	return ok, nil
}

func (l *EventLedger) Release(ctx context.Context, eventID string) error {
	if err := l.client.Del(ctx, keyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis: release %s: %w", eventID, err)
	}
	return nil
}
