package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/mathieu6700417/conciergeriecordo/internal/domain/outbox"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability/logctx"
)

const (
	componentOutbox   = "outbox"
	defaultQueueSize  = 1024
	defaultFanout     = 8
	defaultHandlerTTL = 30 * time.Second
)

var ErrStopped = errors.New("outbox: bus stopped")

// Bus is an in-process event bus. Published events are queued and fanned out to
// subscribers on a background loop, so publishers never wait for handlers.
// It is not durable: events still queued when the process exits are lost.
type Bus struct {
	mu          sync.RWMutex // guards subs
	sendMu      sync.RWMutex // held by senders so Stop cannot close the queue under them
	subs        map[string][]domoutbox.Handler
	queue       chan domoutbox.Event
	startOnce   sync.Once
	stopOnce    sync.Once
	stopped     chan struct{}
	done        chan struct{}
	concurrency int
	handlerTTL  time.Duration
	log         observability.Logger
}

type Option func(*Bus)

// WithQueueSize sets the buffer between publishers and the dispatch loop.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan domoutbox.Event, n)
		}
	}
}

// WithHandlerTimeout bounds each handler invocation.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTTL = d
		}
	}
}

func NewBus(tel observability.Observability, opts ...Option) *Bus {
	tel = observability.Or(tel)
	b := &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan domoutbox.Event, defaultQueueSize),
		stopped:     make(chan struct{}),
		done:        make(chan struct{}),
		concurrency: defaultFanout,
		handlerTTL:  defaultHandlerTTL,
		log:         tel.Logger().With(observability.F("component", componentOutbox)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events, drains the queue and waits for in-flight handlers
// until ctx expires.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		close(b.stopped)
		b.sendMu.Lock()
		close(b.queue)
		b.sendMu.Unlock()

		logger := logctx.FromOr(ctx, b.log)
		select {
		case <-b.done:
			logger.Info("event_bus_stopped")
		case <-ctx.Done():
			logger.Warn("event_bus_stop_timeout", observability.F("pending", len(b.queue)))
		}
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))

	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	select {
	case <-b.stopped:
		return ErrStopped
	default:
	}

	select {
	case b.queue <- e:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.Err(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()
	logger := b.log.With(observability.F("event", name))

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(logctx.With(ctx, logger), b.handlerTTL)
			defer cancel()
			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error", observability.Err(err))
			}
		}()
	}

	wg.Wait()
	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}

// Multi publishes to every publisher in order and joins their errors.
type Multi []domoutbox.Publisher

func (m Multi) Publish(ctx context.Context, e domoutbox.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
