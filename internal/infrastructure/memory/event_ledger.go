package memory

import (
	"context"
	"sync"
	"time"
)

// EventLedger remembers claimed provider event ids until their TTL passes.
type EventLedger struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	claimed map[string]time.Time
}

func NewEventLedger(ttl time.Duration) *EventLedger {
	return &EventLedger{ttl: ttl, now: time.Now, claimed: make(map[string]time.Time)}
}

func (l *EventLedger) Claim(ctx context.Context, eventID string) (bool, error) {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, ok := l.claimed[eventID]; ok && (l.ttl <= 0 || now.Before(exp)) {
		return false, nil
	}
	l.claimed[eventID] = now.Add(l.ttl)
	return true, nil
}

func (l *EventLedger) Release(ctx context.Context, eventID string) error {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, eventID)
	return nil
}
