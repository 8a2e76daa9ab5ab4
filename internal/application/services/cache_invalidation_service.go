package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/waypointhq/waypoint-backend/internal/adapters/events"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
)

// CacheInvalidationService drops a user's cached HTTP responses when one of
// their segments changes, so itinerary reads reflect writes from other
// devices within the cache TTL.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins consuming segment events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, events.SegmentEventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to segment events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.SegmentEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.SegmentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefix := fmt.Sprintf("http:cache:%s:", event.OwnerID)
	if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Str("owner_id", event.OwnerID).
			Msg("failed to invalidate cached responses")
		return
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("owner_id", event.OwnerID).
		Str("type", string(event.Type)).
		Msg("invalidated cached responses after segment change")
}
