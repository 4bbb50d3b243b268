package payment

import "context"

// EventLedger records provider event ids that were already handled.
type EventLedger interface {
	// Claim returns false when eventID was claimed before and has not been released.
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}
