package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// AutofillInput is the loosely-typed request body as received over the wire,
// before normalization.
type AutofillInput struct {
	Type     string                 `json:"type"`
	Query    string                 `json:"query"`
	Date     string                 `json:"date"`
	Context  map[string]interface{} `json:"context"`
	Metadata map[string]interface{} `json:"metadata"`
}

// AutofillResult carries a resolved suggestion plus whether it was served
// from cache.
type AutofillResult struct {
	Suggestion *entities.SegmentAutofillSuggestion
	CacheHit   bool
}

// segmentTypeSynonyms maps raw type strings to canonical segment types.
// Canonical values map to themselves so normalization is a single lookup.
var segmentTypeSynonyms = map[string]entities.SegmentType{
	"flight":        entities.SegmentTypeFlight,
	"flights":       entities.SegmentTypeFlight,
	"air":           entities.SegmentTypeFlight,
	"plane":         entities.SegmentTypeFlight,
	"train":         entities.SegmentTypeTrain,
	"rail":          entities.SegmentTypeTrain,
	"transport":     entities.SegmentTypeTransport,
	"ground":        entities.SegmentTypeTransport,
	"transit":       entities.SegmentTypeTransport,
	"bus":           entities.SegmentTypeTransport,
	"hotel":         entities.SegmentTypeHotel,
	"lodging":       entities.SegmentTypeHotel,
	"stay":          entities.SegmentTypeHotel,
	"accommodation": entities.SegmentTypeHotel,
	"meal":          entities.SegmentTypeMeal,
	"dining":        entities.SegmentTypeMeal,
	"restaurant":    entities.SegmentTypeMeal,
	"food":          entities.SegmentTypeMeal,
	"activity":      entities.SegmentTypeActivity,
	"event":         entities.SegmentTypeActivity,
	"tour":          entities.SegmentTypeActivity,
	"custom":        entities.SegmentTypeCustom,
	"other":         entities.SegmentTypeCustom,
}

// NormalizeAutofillRequest validates and canonicalizes a raw autofill input.
// The returned request always has a canonical type and a trimmed query of at
// least two characters.
func NormalizeAutofillRequest(input *AutofillInput) (*entities.SegmentAutofillRequest, error) {
	rawType := strings.ToLower(strings.TrimSpace(input.Type))
	if rawType == "" {
		return nil, apperrors.NewValidationError("type is required")
	}

	segType, ok := segmentTypeSynonyms[rawType]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown segment type %q", input.Type))
	}

	query := strings.TrimSpace(input.Query)
	if len(query) < 2 {
		return nil, apperrors.NewValidationError("query must be at least 2 characters")
	}

	return &entities.SegmentAutofillRequest{
		Type:     segType,
		Query:    query,
		Date:     strings.TrimSpace(input.Date),
		Context:  normalizeAutofillContext(input.Context),
		Metadata: input.Metadata,
	}, nil
}

// normalizeAutofillContext coerces the loose context map into a typed
// geographic bias. Invalid fields are dropped individually; if nothing
// survives, the context is nil.
func normalizeAutofillContext(raw map[string]interface{}) *entities.AutofillContext {
	if raw == nil {
		return nil
	}

	geo := &entities.AutofillContext{
		Latitude:     coerceFloat(raw["lat"]),
		Longitude:    coerceFloat(raw["lng"]),
		RadiusMeters: coerceFloat(raw["radiusMeters"]),
	}

	if geo.Latitude == nil && geo.Longitude == nil && geo.RadiusMeters == nil {
		return nil
	}
	return geo
}

// coerceFloat accepts JSON numbers and numeric strings
func coerceFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

// buildCacheKey derives a deterministic cache key from the normalized
// request. Each field is length-prefixed so no combination of values can
// collide with another by sliding across the separator.
func buildCacheKey(req *entities.SegmentAutofillRequest) string {
	date := req.Date
	if len(date) > 10 {
		date = date[:10]
	}

	geo := ""
	if req.Context != nil {
		geo = fmt.Sprintf("%s|%s|%s",
			formatGeoField(req.Context.Latitude),
			formatGeoField(req.Context.Longitude),
			formatGeoField(req.Context.RadiusMeters),
		)
	}

	fields := []string{
		string(req.Type),
		strings.ToLower(req.Query),
		date,
		geo,
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%d:%s", len(f), f)
	}
	return strings.Join(parts, "|")
}

func formatGeoField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

type cachedSuggestion struct {
	suggestion *entities.SegmentAutofillSuggestion
	expiresAt  time.Time
}

// suggestionCache is an in-process TTL cache for resolved suggestions.
// Expired entries are dropped lazily on read.
type suggestionCache struct {
	mu      sync.Mutex
	entries map[string]cachedSuggestion
	ttl     time.Duration
	now     func() time.Time
}

func newSuggestionCache(ttl time.Duration, now func() time.Time) *suggestionCache {
	return &suggestionCache{
		entries: make(map[string]cachedSuggestion),
		ttl:     ttl,
		now:     now,
	}
}

func (c *suggestionCache) get(key string) (*entities.SegmentAutofillSuggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.suggestion, true
}

func (c *suggestionCache) set(key string, suggestion *entities.SegmentAutofillSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedSuggestion{
		suggestion: suggestion,
		expiresAt:  c.now().Add(c.ttl),
	}
}

// autofillCall tracks an in-flight provider lookup so concurrent requests
// for the same key share one upstream call.
type autofillCall struct {
	done       chan struct{}
	suggestion *entities.SegmentAutofillSuggestion
	err        error
}

// SegmentAutofillService resolves autofill lookups against external
// providers, with a TTL cache and in-flight deduplication in front.
type SegmentAutofillService struct {
	flights providers.FlightProvider
	transit providers.TransitProvider
	places  providers.PlaceProvider

	cache *suggestionCache

	mu       sync.Mutex
	inflight map[string]*autofillCall
}

// NewSegmentAutofillService creates a new autofill service. Any provider may
// be nil; lookups routed to a nil provider resolve to no match.
func NewSegmentAutofillService(
	flights providers.FlightProvider,
	transit providers.TransitProvider,
	places providers.PlaceProvider,
	cacheTTL time.Duration,
	now func() time.Time,
) *SegmentAutofillService {
	if now == nil {
		now = time.Now
	}
	return &SegmentAutofillService{
		flights:  flights,
		transit:  transit,
		places:   places,
		cache:    newSuggestionCache(cacheTTL, now),
		inflight: make(map[string]*autofillCall),
	}
}

// Resolve normalizes the input, consults the cache, and dispatches to the
// provider for the segment type. Requests that piggy-back on an in-flight
// lookup for the same key report a cache hit.
func (s *SegmentAutofillService) Resolve(ctx context.Context, input *AutofillInput) (*AutofillResult, error) {
	req, err := NormalizeAutofillRequest(input)
	if err != nil {
		return nil, err
	}

	key := buildCacheKey(req)

	if suggestion, ok := s.cache.get(key); ok {
		return &AutofillResult{Suggestion: suggestion, CacheHit: true}, nil
	}

	s.mu.Lock()
	if call, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if call.err != nil {
			return nil, call.err
		}
		return &AutofillResult{Suggestion: call.suggestion, CacheHit: true}, nil
	}

	call := &autofillCall{done: make(chan struct{})}
	s.inflight[key] = call
	s.mu.Unlock()

	call.suggestion, call.err = s.dispatch(ctx, req)
	if call.err == nil {
		s.cache.set(key, call.suggestion)
	}

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(call.done)

	if call.err != nil {
		return nil, call.err
	}
	return &AutofillResult{Suggestion: call.suggestion, CacheHit: false}, nil
}

func (s *SegmentAutofillService) dispatch(ctx context.Context, req *entities.SegmentAutofillRequest) (*entities.SegmentAutofillSuggestion, error) {
	switch req.Type {
	case entities.SegmentTypeFlight:
		if s.flights == nil {
			return nil, apperrors.NewNotFoundError("no flight provider configured")
		}
		return s.flights.LookupFlight(ctx, req.Query, req.Date)

	case entities.SegmentTypeTrain, entities.SegmentTypeTransport:
		if s.transit == nil {
			return nil, apperrors.NewNotFoundError("no transit provider configured")
		}
		return s.transit.LookupTrip(ctx, req.Query, req.Date)

	case entities.SegmentTypeHotel, entities.SegmentTypeMeal, entities.SegmentTypeActivity:
		if s.places == nil {
			return nil, apperrors.NewNotFoundError("no place provider configured")
		}
		return s.places.LookupPlace(ctx, req.Query, string(req.Type), req.Context)

	default:
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no provider for segment type %q", req.Type))
	}
}
