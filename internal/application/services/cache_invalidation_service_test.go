package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/adapters/events"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// MockCacheProvider for testing
type MockCacheProvider struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheProvider) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.SegmentEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.SegmentEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.SegmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SegmentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.SegmentEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func TestCacheInvalidation_DropsOwnersCachedResponsesOnly(t *testing.T) {
	cache := NewMockCacheProvider()
	bus := NewMockEventBus()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "http:cache:user-ada:abc123", []byte("{}"), 120))
	require.NoError(t, cache.Set(ctx, "http:cache:user-ada:def456", []byte("{}"), 120))
	require.NoError(t, cache.Set(ctx, "http:cache:user-bruno:abc123", []byte("{}"), 120))

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	require.NoError(t, bus.Publish(ctx, events.SegmentEventsChannel, &entities.SegmentEvent{
		ID:          "event-1",
		Type:        entities.SegmentEventUpdated,
		SegmentID:   "segment-1",
		ItineraryID: "itinerary-1",
		OwnerID:     "user-ada",
		OccurredAt:  time.Now(),
	}))

	require.Eventually(t, func() bool {
		exists, _ := cache.Exists(ctx, "http:cache:user-ada:abc123")
		return !exists
	}, time.Second, 10*time.Millisecond)

	exists, _ := cache.Exists(ctx, "http:cache:user-ada:def456")
	assert.False(t, exists)

	exists, _ = cache.Exists(ctx, "http:cache:user-bruno:abc123")
	assert.True(t, exists)
}

func TestCacheInvalidation_StopEndsProcessing(t *testing.T) {
	cache := NewMockCacheProvider()
	bus := NewMockEventBus()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "http:cache:user-ada:abc123", []byte("{}"), 120))

	svc := services.NewCacheInvalidationService(cache, bus)
	require.NoError(t, svc.Start())
	svc.Stop()

	// Give the consumer goroutine a moment to observe cancellation
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, bus.Publish(ctx, events.SegmentEventsChannel, &entities.SegmentEvent{
		ID:      "event-1",
		OwnerID: "user-ada",
	}))
	time.Sleep(50 * time.Millisecond)

	exists, _ := cache.Exists(ctx, "http:cache:user-ada:abc123")
	assert.True(t, exists)
}
