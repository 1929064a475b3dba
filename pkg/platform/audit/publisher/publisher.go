// Package publisher fans audit events out to a Store, synchronously or through
// a bounded async buffer. Emission never blocks a request on a slow sink.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "rolegate/pkg/platform/audit"
	"rolegate/pkg/platform/audit/worker"
	"rolegate/pkg/platform/sentinel"
)

// Publisher captures structured audit events.
type Publisher struct {
	store   audit.Store
	breaker *CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger

	bufferSize int
	inbox      chan audit.Event
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithCircuitBreaker overrides the default breaker (5 failures, 1 minute).
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) {
		p.breaker = cb
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker == nil {
		p.breaker = NewCircuitBreaker(5, time.Minute)
	}

	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		w := worker.NewWorker(guardedStore{p}, p.inbox, p.logger)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			// the worker exits once Close closes the inbox
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit stamps and categorizes the event, then persists it (sync mode) or
// queues it (async mode). A full buffer drops the event and returns
// sentinel.ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.incDropped("closed")
		return fmt.Errorf("audit publisher closed: %w", sentinel.ErrUnavailable)
	}

	if p.inbox == nil {
		return p.persist(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.incDropped("buffer_full")
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
		return fmt.Errorf("audit buffer full: %w", sentinel.ErrBufferFull)
	}
}

// Close stops accepting events and, in async mode, drains the buffer.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if !p.breaker.Allow() {
		p.metrics.incDropped("circuit_open")
		return fmt.Errorf("audit sink circuit open: %w", sentinel.ErrUnavailable)
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.breaker.RecordFailure()
		p.metrics.incPersistFailures()
		p.metrics.setCircuitBreakerState(p.breaker.IsOpen())
		return fmt.Errorf("append audit event: %w", err)
	}
	p.breaker.RecordSuccess()
	p.metrics.incPersisted()
	p.metrics.setCircuitBreakerState(false)
	return nil
}

// guardedStore routes worker appends through the breaker and metrics.
type guardedStore struct {
	p *Publisher
}

func (g guardedStore) Append(ctx context.Context, event audit.Event) error {
	return g.p.persist(ctx, event)
}
