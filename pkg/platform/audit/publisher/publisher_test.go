package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"rolegate/pkg/domain"
	audit "rolegate/pkg/platform/audit"
	"rolegate/pkg/platform/audit/store/memory"
	"rolegate/pkg/platform/sentinel"
)

const identity = domain.Identity("admin@example.com")

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Identity: identity,
		Action:   string(audit.EventTokenIssued),
	})
	require.NoError(t, err)

	events, err := store.ListByIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventTokenIssued), events[0].Action)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AssignsCategoryFromAction(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Identity: identity,
		Action:   string(audit.EventAccessDenied),
		Category: audit.CategoryOperations,
	}))

	events, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Identity: identity,
		Action:   string(audit.EventMessageSent),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, _ := store.ListByIdentity(context.Background(), identity)
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Identity: identity,
			Action:   string(audit.EventTokenIssued),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByIdentity(context.Background(), identity)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventTokenIssued)})
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

// blockingStore holds every append until release is closed.
type blockingStore struct {
	release chan struct{}
	inner   *memory.InMemoryStore
}

func (s *blockingStore) Append(ctx context.Context, e audit.Event) error {
	<-s.release
	return s.inner.Append(ctx, e)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{}), inner: memory.NewInMemoryStore()}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	pub := NewPublisher(store, WithAsyncBuffer(1), WithMetrics(metrics))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventTokenIssued)})
			if errors.Is(err, sentinel.ErrBufferFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// at most one event sits with the worker and one in the buffer
	assert.GreaterOrEqual(t, full, 8)
	assert.Equal(t, float64(full), promtest.ToFloat64(metrics.Dropped.WithLabelValues("buffer_full")))

	close(store.release)
	pub.Close()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Identity: identity,
		Action:   string(audit.EventTokenIssued),
	}))
	after := time.Now()

	events, err := store.ListByIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Identity:  identity,
		Action:    string(audit.EventTokenIssued),
		Timestamp: customTime,
	}))

	events, err := store.ListByIdentity(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

type flakyStore struct {
	mu    sync.Mutex
	calls int
}

func (s *flakyStore) Append(context.Context, audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink unavailable")
}

func TestPublisher_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	store := &flakyStore{}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	pub := NewPublisher(store,
		WithCircuitBreaker(NewCircuitBreaker(2, time.Hour)),
		WithMetrics(metrics),
	)
	defer pub.Close()

	ctx := context.Background()
	ev := audit.Event{Action: string(audit.EventAccessDenied)}

	require.Error(t, pub.Emit(ctx, ev))
	require.Error(t, pub.Emit(ctx, ev))

	err := pub.Emit(ctx, ev)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, 2, store.calls, "open circuit skips the sink")
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.CircuitBreakerState))
	assert.Equal(t, float64(2), promtest.ToFloat64(metrics.PersistFailures))
}

func TestCircuitBreaker_HalfOpensAfterCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())

	now = now.Add(time.Minute + time.Second)
	assert.True(t, cb.Allow())
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}
