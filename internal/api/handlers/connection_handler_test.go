package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waypointhq/waypoint-backend/internal/api/handlers"
	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

type memoryConnectionRepo struct {
	mu          sync.Mutex
	connections map[string]*entities.Connection
}

func newMemoryConnectionRepo() *memoryConnectionRepo {
	return &memoryConnectionRepo{connections: make(map[string]*entities.Connection)}
}

func (r *memoryConnectionRepo) Create(ctx context.Context, connection *entities.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *connection
	r.connections[connection.ID] = &copied
	return nil
}

func (r *memoryConnectionRepo) GetByID(ctx context.Context, id string) (*entities.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connection, ok := r.connections[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("connection not found")
	}
	copied := *connection
	return &copied, nil
}

func (r *memoryConnectionRepo) Accept(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	connection, ok := r.connections[id]
	if !ok {
		return apperrors.NewNotFoundError("connection not found")
	}
	connection.Status = entities.ConnectionStatusAccepted
	connection.UpdatedAt = time.Now()
	return nil
}

func (r *memoryConnectionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[id]; !ok {
		return apperrors.NewNotFoundError("connection not found")
	}
	delete(r.connections, id)
	return nil
}

func (r *memoryConnectionRepo) DeleteBetween(ctx context.Context, userA, userB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.connections {
		if (c.RequesterID == userA && c.AddresseeID == userB) ||
			(c.RequesterID == userB && c.AddresseeID == userA) {
			delete(r.connections, id)
		}
	}
	return nil
}

func (r *memoryConnectionRepo) ListForUser(ctx context.Context, userID string, filter repositories.ConnectionFilter) ([]*entities.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Connection
	for _, c := range r.connections {
		if c.RequesterID != userID && c.AddresseeID != userID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type memoryBlockRepo struct {
	mu     sync.Mutex
	blocks map[[2]string]bool
}

func newMemoryBlockRepo() *memoryBlockRepo {
	return &memoryBlockRepo{blocks: make(map[[2]string]bool)}
}

func (r *memoryBlockRepo) Upsert(ctx context.Context, block *entities.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[[2]string{block.BlockerID, block.BlockedID}] = true
	return nil
}

func (r *memoryBlockRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blocks, [2]string{blockerID, blockedID})
	return nil
}

func (r *memoryBlockRepo) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocks[[2]string{blockerID, blockedID}], nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemoryUserRepo(users ...*entities.User) *memoryUserRepo {
	repo := &memoryUserRepo{users: make(map[string]*entities.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return user, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r *memoryUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

type connectionFixture struct {
	handler     *handlers.ConnectionHandler
	connections *memoryConnectionRepo
	blocks      *memoryBlockRepo
}

func newConnectionFixture(users ...*entities.User) *connectionFixture {
	connections := newMemoryConnectionRepo()
	blocks := newMemoryBlockRepo()
	service := services.NewConnectionService(connections, blocks, newMemoryUserRepo(users...))
	return &connectionFixture{
		handler:     handlers.NewConnectionHandler(service),
		connections: connections,
		blocks:      blocks,
	}
}

func authedRequest(method, target, userID string, payload interface{}) *http.Request {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestConnectionRequest_CreatesPending(t *testing.T) {
	fixture := newConnectionFixture(
		&entities.User{ID: "user-ada", Email: "ada@example.com"},
		&entities.User{ID: "user-bruno", Email: "bruno@example.com"},
	)

	req := authedRequest(http.MethodPost, "/api/connections", "user-ada",
		map[string]string{"addressee_id": "user-bruno"})
	rec := httptest.NewRecorder()
	fixture.handler.Request(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var connection entities.Connection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &connection))
	assert.NotEmpty(t, connection.ID)
	assert.Equal(t, "user-ada", connection.RequesterID)
	assert.Equal(t, "user-bruno", connection.AddresseeID)
	assert.Equal(t, entities.ConnectionStatusPending, connection.Status)
}

func TestConnectionRequest_SelfConnectionRejected(t *testing.T) {
	fixture := newConnectionFixture(&entities.User{ID: "user-ada"})

	req := authedRequest(http.MethodPost, "/api/connections", "user-ada",
		map[string]string{"addressee_id": "user-ada"})
	rec := httptest.NewRecorder()
	fixture.handler.Request(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectionRequest_BlockedUserLooksMissing(t *testing.T) {
	fixture := newConnectionFixture(
		&entities.User{ID: "user-ada"},
		&entities.User{ID: "user-bruno"},
	)
	require.NoError(t, fixture.blocks.Upsert(context.Background(), &entities.Block{
		BlockerID: "user-bruno",
		BlockedID: "user-ada",
	}))

	req := authedRequest(http.MethodPost, "/api/connections", "user-ada",
		map[string]string{"addressee_id": "user-bruno"})
	rec := httptest.NewRecorder()
	fixture.handler.Request(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body["error"])
}

func TestConnectionAccept_OnlyAddresseeMayAccept(t *testing.T) {
	fixture := newConnectionFixture(
		&entities.User{ID: "user-ada"},
		&entities.User{ID: "user-bruno"},
	)
	pending := &entities.Connection{
		ID:          "conn-1",
		RequesterID: "user-ada",
		AddresseeID: "user-bruno",
		Status:      entities.ConnectionStatusPending,
	}
	require.NoError(t, fixture.connections.Create(context.Background(), pending))

	// The requester accepting their own request is treated as not found
	req := authedRequest(http.MethodPost, "/api/connections/conn-1/accept", "user-ada", nil)
	req.SetPathValue("id", "conn-1")
	rec := httptest.NewRecorder()
	fixture.handler.Accept(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = authedRequest(http.MethodPost, "/api/connections/conn-1/accept", "user-bruno", nil)
	req.SetPathValue("id", "conn-1")
	rec = httptest.NewRecorder()
	fixture.handler.Accept(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var accepted entities.Connection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, entities.ConnectionStatusAccepted, accepted.Status)

	// A second accept conflicts
	req = authedRequest(http.MethodPost, "/api/connections/conn-1/accept", "user-bruno", nil)
	req.SetPathValue("id", "conn-1")
	rec = httptest.NewRecorder()
	fixture.handler.Accept(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConnectionRemove_EitherSideMayRemove(t *testing.T) {
	fixture := newConnectionFixture(
		&entities.User{ID: "user-ada"},
		&entities.User{ID: "user-bruno"},
	)
	require.NoError(t, fixture.connections.Create(context.Background(), &entities.Connection{
		ID:          "conn-1",
		RequesterID: "user-ada",
		AddresseeID: "user-bruno",
		Status:      entities.ConnectionStatusAccepted,
	}))

	req := authedRequest(http.MethodDelete, "/api/connections/conn-1", "user-ada", nil)
	req.SetPathValue("id", "conn-1")
	rec := httptest.NewRecorder()
	fixture.handler.Remove(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := fixture.connections.GetByID(context.Background(), "conn-1")
	require.Error(t, err)
}

func TestConnectionList_FiltersByStatus(t *testing.T) {
	fixture := newConnectionFixture(
		&entities.User{ID: "user-ada"},
		&entities.User{ID: "user-bruno"},
		&entities.User{ID: "user-chen"},
	)
	require.NoError(t, fixture.connections.Create(context.Background(), &entities.Connection{
		ID: "conn-1", RequesterID: "user-ada", AddresseeID: "user-bruno",
		Status: entities.ConnectionStatusAccepted,
	}))
	require.NoError(t, fixture.connections.Create(context.Background(), &entities.Connection{
		ID: "conn-2", RequesterID: "user-chen", AddresseeID: "user-ada",
		Status: entities.ConnectionStatusPending,
	}))

	req := authedRequest(http.MethodGet, "/api/connections?status=pending", "user-ada", nil)
	rec := httptest.NewRecorder()
	fixture.handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Connections []*entities.Connection `json:"connections"`
		Count       int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, 1, response.Count)
	assert.Equal(t, "conn-2", response.Connections[0].ID)
}

func TestConnectionEndpoints_RequireAuthentication(t *testing.T) {
	fixture := newConnectionFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/connections", nil)
	rec := httptest.NewRecorder()
	fixture.handler.List(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
