package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

type stubItineraryRepo struct {
	mu          sync.Mutex
	itineraries map[string]*entities.Itinerary
}

func newStubItineraryRepo() *stubItineraryRepo {
	return &stubItineraryRepo{itineraries: make(map[string]*entities.Itinerary)}
}

func (r *stubItineraryRepo) Create(ctx context.Context, itinerary *entities.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *itinerary
	r.itineraries[itinerary.ID] = &copied
	return nil
}

func (r *stubItineraryRepo) GetByID(ctx context.Context, id string) (*entities.Itinerary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	itinerary, ok := r.itineraries[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("itinerary not found")
	}
	copied := *itinerary
	return &copied, nil
}

func (r *stubItineraryRepo) Update(ctx context.Context, itinerary *entities.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.itineraries[itinerary.ID]; !ok {
		return apperrors.NewNotFoundError("itinerary not found")
	}
	copied := *itinerary
	r.itineraries[itinerary.ID] = &copied
	return nil
}

func (r *stubItineraryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.itineraries[id]; !ok {
		return apperrors.NewNotFoundError("itinerary not found")
	}
	delete(r.itineraries, id)
	return nil
}

func (r *stubItineraryRepo) ListByOwner(ctx context.Context, ownerID string, filter repositories.ItineraryFilter) ([]*entities.Itinerary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Itinerary
	for _, itinerary := range r.itineraries {
		if itinerary.OwnerID != ownerID {
			continue
		}
		if itinerary.IsArchived && !filter.IncludeArchived {
			continue
		}
		copied := *itinerary
		out = append(out, &copied)
	}
	return out, nil
}

type stubSegmentRepo struct {
	mu       sync.Mutex
	segments map[string]*entities.Segment
}

func newStubSegmentRepo() *stubSegmentRepo {
	return &stubSegmentRepo{segments: make(map[string]*entities.Segment)}
}

func (r *stubSegmentRepo) Create(ctx context.Context, segment *entities.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *segment
	r.segments[segment.ID] = &copied
	return nil
}

func (r *stubSegmentRepo) GetByID(ctx context.Context, id string) (*entities.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	segment, ok := r.segments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("segment not found")
	}
	copied := *segment
	return &copied, nil
}

func (r *stubSegmentRepo) Update(ctx context.Context, segment *entities.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.segments[segment.ID]; !ok {
		return apperrors.NewNotFoundError("segment not found")
	}
	copied := *segment
	r.segments[segment.ID] = &copied
	return nil
}

func (r *stubSegmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.segments, id)
	return nil
}

func (r *stubSegmentRepo) ListByItinerary(ctx context.Context, itineraryID string) ([]*entities.Segment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Segment
	for _, segment := range r.segments {
		if segment.ItineraryID == itineraryID {
			copied := *segment
			out = append(out, &copied)
		}
	}
	return out, nil
}

type stubSearchRepo struct {
	mu      sync.Mutex
	indexed map[string]int
	deleted []string
}

func newStubSearchRepo() *stubSearchRepo {
	return &stubSearchRepo{indexed: make(map[string]int)}
}

func (r *stubSearchRepo) InitSchema(ctx context.Context) error { return nil }

func (r *stubSearchRepo) Index(ctx context.Context, itinerary *entities.Itinerary, segments []*entities.Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed[itinerary.ID]++
	return nil
}

func (r *stubSearchRepo) Delete(ctx context.Context, itineraryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, itineraryID)
	return nil
}

func (r *stubSearchRepo) Search(ctx context.Context, ownerID, query string, limit int) ([]*entities.Itinerary, error) {
	return nil, nil
}

func TestItineraryCreate_IndexesAndAssignsOwnership(t *testing.T) {
	search := newStubSearchRepo()
	svc := services.NewItineraryService(newStubItineraryRepo(), newStubSegmentRepo(), search)

	created, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{
		Title:       "Tokyo in Spring",
		Destination: "Tokyo, Japan",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-ada", created.OwnerID)
	assert.False(t, created.IsArchived)
	assert.Equal(t, 1, search.indexed[created.ID])
}

func TestItineraryCreate_RequiresTitle(t *testing.T) {
	svc := services.NewItineraryService(newStubItineraryRepo(), newStubSegmentRepo(), nil)

	_, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{Title: "   "})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestItineraryGet_OtherOwnersItineraryLooksMissing(t *testing.T) {
	svc := services.NewItineraryService(newStubItineraryRepo(), newStubSegmentRepo(), nil)

	created, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{Title: "Tokyo"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "user-bruno", created.ID)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestItineraryDelete_RemovesSearchDocument(t *testing.T) {
	search := newStubSearchRepo()
	svc := services.NewItineraryService(newStubItineraryRepo(), newStubSegmentRepo(), search)

	created, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{Title: "Tokyo"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user-ada", created.ID))
	assert.Contains(t, search.deleted, created.ID)
}

func TestItinerarySearch_UnavailableWithoutBackend(t *testing.T) {
	svc := services.NewItineraryService(newStubItineraryRepo(), newStubSegmentRepo(), nil)

	_, err := svc.Search(context.Background(), "user-ada", "tokyo", 10)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
}

func TestItineraryList_ExcludesArchivedByDefault(t *testing.T) {
	repo := newStubItineraryRepo()
	svc := services.NewItineraryService(repo, newStubSegmentRepo(), nil)

	active, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{Title: "Active"})
	require.NoError(t, err)
	archived, err := svc.Create(context.Background(), "user-ada", &entities.Itinerary{Title: "Archived"})
	require.NoError(t, err)

	archived.IsArchived = true
	_, err = svc.Update(context.Background(), "user-ada", archived)
	require.NoError(t, err)

	itineraries, err := svc.List(context.Background(), "user-ada", repositories.ItineraryFilter{})
	require.NoError(t, err)
	require.Len(t, itineraries, 1)
	assert.Equal(t, active.ID, itineraries[0].ID)

	itineraries, err = svc.List(context.Background(), "user-ada", repositories.ItineraryFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, itineraries, 2)
}
