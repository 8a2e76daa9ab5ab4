package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

type stubMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*entities.Match
}

func newStubMatchRepo(matches ...*entities.Match) *stubMatchRepo {
	repo := &stubMatchRepo{matches: make(map[string]*entities.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = m
	}
	return repo
}

func (r *stubMatchRepo) GetByID(ctx context.Context, id string) (*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("match not found")
	}
	copied := *match
	return &copied, nil
}

func (r *stubMatchRepo) ListForUser(ctx context.Context, userID string, filter repositories.MatchFilter) ([]*entities.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Match
	for _, m := range r.matches {
		if m.UserID != userID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *stubMatchRepo) UpdateStatus(ctx context.Context, id string, status entities.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok || match.Status != entities.MatchStatusSuggested {
		return apperrors.NewNotFoundError("open match with id " + id + " not found")
	}
	now := time.Now()
	match.Status = status
	match.RespondedAt = &now
	return nil
}

func TestMatchRespond_AcceptRecordsResponse(t *testing.T) {
	repo := newStubMatchRepo(&entities.Match{
		ID:       "match-1",
		UserID:   "user-ada",
		FirstID:  "user-bruno",
		SecondID: "user-chen",
		Score:    0.82,
		Status:   entities.MatchStatusSuggested,
	})
	svc := services.NewMatchService(repo)

	match, err := svc.Respond(context.Background(), "user-ada", "match-1", true)
	require.NoError(t, err)

	assert.Equal(t, entities.MatchStatusAccepted, match.Status)
	require.NotNil(t, match.RespondedAt)
}

func TestMatchRespond_DeclineRecordsResponse(t *testing.T) {
	repo := newStubMatchRepo(&entities.Match{
		ID:     "match-1",
		UserID: "user-ada",
		Status: entities.MatchStatusSuggested,
	})
	svc := services.NewMatchService(repo)

	match, err := svc.Respond(context.Background(), "user-ada", "match-1", false)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusDeclined, match.Status)
}

func TestMatchRespond_OtherUsersMatchLooksMissing(t *testing.T) {
	repo := newStubMatchRepo(&entities.Match{
		ID:     "match-1",
		UserID: "user-ada",
		Status: entities.MatchStatusSuggested,
	})
	svc := services.NewMatchService(repo)

	_, err := svc.Respond(context.Background(), "user-bruno", "match-1", true)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestMatchRespond_AlreadyRespondedMatchNotReopened(t *testing.T) {
	repo := newStubMatchRepo(&entities.Match{
		ID:     "match-1",
		UserID: "user-ada",
		Status: entities.MatchStatusDeclined,
	})
	svc := services.NewMatchService(repo)

	_, err := svc.Respond(context.Background(), "user-ada", "match-1", true)
	require.Error(t, err)
}

func TestMatchList_FiltersByStatusAndUser(t *testing.T) {
	repo := newStubMatchRepo(
		&entities.Match{ID: "match-1", UserID: "user-ada", Status: entities.MatchStatusSuggested},
		&entities.Match{ID: "match-2", UserID: "user-ada", Status: entities.MatchStatusAccepted},
		&entities.Match{ID: "match-3", UserID: "user-bruno", Status: entities.MatchStatusSuggested},
	)
	svc := services.NewMatchService(repo)

	matches, err := svc.List(context.Background(), "user-ada", repositories.MatchFilter{
		Status: entities.MatchStatusSuggested,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "match-1", matches[0].ID)
}
