package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// stubFlightProvider counts calls and returns a fixed suggestion
type stubFlightProvider struct {
	calls      int32
	suggestion *entities.SegmentAutofillSuggestion
	err        error
	block      chan struct{}
}

func (s *stubFlightProvider) LookupFlight(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block != nil {
		<-s.block
	}
	return s.suggestion, s.err
}

type stubTransitProvider struct {
	calls      int32
	suggestion *entities.SegmentAutofillSuggestion
}

func (s *stubTransitProvider) LookupTrip(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.suggestion, nil
}

type stubPlaceProvider struct {
	calls    int32
	lastGeo  *entities.AutofillContext
	lastCat  string
	response *entities.SegmentAutofillSuggestion
}

func (s *stubPlaceProvider) LookupPlace(ctx context.Context, query, category string, geo *entities.AutofillContext) (*entities.SegmentAutofillSuggestion, error) {
	atomic.AddInt32(&s.calls, 1)
	s.lastGeo = geo
	s.lastCat = category
	return s.response, nil
}

func titleSuggestion(title, source string) *entities.SegmentAutofillSuggestion {
	return &entities.SegmentAutofillSuggestion{Title: &title, Source: source}
}

func TestNormalizeAutofillRequest_TypeSynonyms(t *testing.T) {
	cases := map[string]entities.SegmentType{
		"flight":     entities.SegmentTypeFlight,
		"flights":    entities.SegmentTypeFlight,
		"Plane":      entities.SegmentTypeFlight,
		"rail":       entities.SegmentTypeTrain,
		"ground":     entities.SegmentTypeTransport,
		"transport":  entities.SegmentTypeTransport,
		"lodging":    entities.SegmentTypeHotel,
		"stay":       entities.SegmentTypeHotel,
		"dining":     entities.SegmentTypeMeal,
		"restaurant": entities.SegmentTypeMeal,
		"event":      entities.SegmentTypeActivity,
		"other":      entities.SegmentTypeCustom,
	}

	for raw, want := range cases {
		req, err := services.NormalizeAutofillRequest(&services.AutofillInput{Type: raw, Query: "something"})
		require.NoError(t, err, "type %q", raw)
		assert.Equal(t, want, req.Type, "type %q", raw)
	}
}

func TestNormalizeAutofillRequest_UnknownTypeRejected(t *testing.T) {
	_, err := services.NormalizeAutofillRequest(&services.AutofillInput{Type: "spaceship", Query: "something"})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestNormalizeAutofillRequest_ShortQueryRejected(t *testing.T) {
	for _, query := range []string{"", " ", "a", "  a  "} {
		_, err := services.NormalizeAutofillRequest(&services.AutofillInput{Type: "flight", Query: query})
		require.Error(t, err, "query %q", query)

		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	}
}

func TestNormalizeAutofillRequest_ContextCoercion(t *testing.T) {
	req, err := services.NormalizeAutofillRequest(&services.AutofillInput{
		Type:  "hotel",
		Query: "park hyatt",
		Context: map[string]interface{}{
			"lat": "37.7",
			"lng": "-122.4",
			"foo": "bar",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, req.Context)
	require.NotNil(t, req.Context.Latitude)
	require.NotNil(t, req.Context.Longitude)
	assert.InDelta(t, 37.7, *req.Context.Latitude, 1e-9)
	assert.InDelta(t, -122.4, *req.Context.Longitude, 1e-9)
	assert.Nil(t, req.Context.RadiusMeters)
}

func TestNormalizeAutofillRequest_AllInvalidContextBecomesNil(t *testing.T) {
	req, err := services.NormalizeAutofillRequest(&services.AutofillInput{
		Type:    "hotel",
		Query:   "park hyatt",
		Context: map[string]interface{}{"foo": "bar"},
	})
	require.NoError(t, err)
	assert.Nil(t, req.Context)
}

func TestResolve_CacheHitOnDayLevelKey(t *testing.T) {
	provider := &stubFlightProvider{suggestion: titleSuggestion("Flight UA120", "test")}
	svc := services.NewSegmentAutofillService(provider, nil, nil, 15*time.Minute, nil)

	first, err := svc.Resolve(context.Background(), &services.AutofillInput{
		Type: "flight", Query: "UA120", Date: "2025-03-01T08:00:00Z",
	})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	// Same day, different time-of-day collapses to the same key
	second, err := svc.Resolve(context.Background(), &services.AutofillInput{
		Type: "flight", Query: "ua120", Date: "2025-03-01T19:30:00Z",
	})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Suggestion, second.Suggestion)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
}

func TestResolve_CacheExpiry(t *testing.T) {
	provider := &stubFlightProvider{suggestion: titleSuggestion("Flight UA120", "test")}

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	svc := services.NewSegmentAutofillService(provider, nil, nil, time.Minute, clock)

	input := &services.AutofillInput{Type: "flight", Query: "UA120", Date: "2025-03-01"}

	_, err := svc.Resolve(context.Background(), input)
	require.NoError(t, err)

	// At exactly the expiry instant the entry is still served
	mu.Lock()
	now = now.Add(time.Minute)
	mu.Unlock()

	result, err := svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.CacheHit)

	mu.Lock()
	now = now.Add(time.Nanosecond)
	mu.Unlock()

	result, err = svc.Resolve(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, result.CacheHit)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestResolve_DistinctQueriesDoNotCollide(t *testing.T) {
	provider := &stubPlaceProvider{response: titleSuggestion("somewhere", "test")}
	svc := services.NewSegmentAutofillService(nil, nil, provider, 15*time.Minute, nil)

	// Queries chosen so naive pipe-joined keys would collide
	first, err := svc.Resolve(context.Background(), &services.AutofillInput{Type: "hotel", Query: "ab|cd"})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Resolve(context.Background(), &services.AutofillInput{Type: "hotel", Query: "ab", Date: "cd"})
	require.NoError(t, err)
	assert.False(t, second.CacheHit)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestResolve_DispatchByType(t *testing.T) {
	flights := &stubFlightProvider{suggestion: titleSuggestion("flight", "f")}
	transitStub := &stubTransitProvider{suggestion: titleSuggestion("trip", "t")}
	places := &stubPlaceProvider{response: titleSuggestion("place", "p")}
	svc := services.NewSegmentAutofillService(flights, transitStub, places, 15*time.Minute, nil)

	_, err := svc.Resolve(context.Background(), &services.AutofillInput{Type: "flight", Query: "UA1"})
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), &services.AutofillInput{Type: "train", Query: "ICE 100"})
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), &services.AutofillInput{Type: "transport", Query: "bus 38"})
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), &services.AutofillInput{Type: "meal", Query: "sushi"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&flights.calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&transitStub.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&places.calls))
	assert.Equal(t, "meal", places.lastCat)
}

func TestResolve_CustomTypeHasNoProvider(t *testing.T) {
	svc := services.NewSegmentAutofillService(
		&stubFlightProvider{}, &stubTransitProvider{}, &stubPlaceProvider{}, 15*time.Minute, nil)

	_, err := svc.Resolve(context.Background(), &services.AutofillInput{Type: "custom", Query: "pack bags"})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestResolve_ProviderErrorsPropagateUnretried(t *testing.T) {
	provider := &stubFlightProvider{err: apperrors.NewProviderUnavailableError("rate limited", nil)}
	svc := services.NewSegmentAutofillService(provider, nil, nil, 15*time.Minute, nil)

	input := &services.AutofillInput{Type: "flight", Query: "UA120"}

	_, err := svc.Resolve(context.Background(), input)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeProviderUnavailable, appErr.Type)

	// Failures are not cached; the next call reaches the provider again
	_, err = svc.Resolve(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestResolve_ConcurrentIdenticalRequestsShareOneCall(t *testing.T) {
	provider := &stubFlightProvider{
		suggestion: titleSuggestion("Flight UA120", "test"),
		block:      make(chan struct{}),
	}
	svc := services.NewSegmentAutofillService(provider, nil, nil, 15*time.Minute, nil)

	input := &services.AutofillInput{Type: "flight", Query: "UA120", Date: "2025-03-01"}

	type resolveOutcome struct {
		result *services.AutofillResult
		err    error
	}

	const waiters = 5
	outcomes := make(chan resolveOutcome, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Resolve(context.Background(), input)
			outcomes <- resolveOutcome{result: result, err: err}
		}()
	}

	// Let the goroutines pile up behind the blocked provider call
	time.Sleep(50 * time.Millisecond)
	close(provider.block)
	wg.Wait()
	close(outcomes)

	hits := 0
	for outcome := range outcomes {
		require.NoError(t, outcome.err)
		require.NotNil(t, outcome.result.Suggestion)
		if outcome.result.CacheHit {
			hits++
		}
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	assert.Equal(t, waiters-1, hits)
}
