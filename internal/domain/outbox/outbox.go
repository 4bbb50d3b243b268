package outbox

import "context"

// Event is a domain fact that happened after a commit.
type Event interface {
	EventName() string
}

// Keyed events carry a partition key, usually the aggregate id.
type Keyed interface {
	EventKey() string
}

type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// KeyOf returns e's partition key, or its name when it has none.
func KeyOf(e Event) string {
	if k, ok := e.(Keyed); ok && k.EventKey() != "" {
		return k.EventKey()
	}
	return e.EventName()
}
