package order

import "context"

// UpdateFunc mutates a locked order. Returning false skips the write.
type UpdateFunc func(o *Order) (changed bool, err error)

type Repository interface {
	// Create persists the order with all pairs and lines atomically.
	Create(ctx context.Context, o *Order) error
	// Get returns the hydrated order with pairs by position and lines by creation order.
	Get(ctx context.Context, id string) (*Order, error)
	// Update loads the order under a row lock (or equivalent), applies fn and persists
	// status, payment reference, checkout session and updated_at when fn reports a change.
	// It returns the order as it stands after fn.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Order, error)
}
