package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innerAtlasAPI/internal/types/goal"
	"innerAtlasAPI/middleware"
	"innerAtlasAPI/services"
)

// memGoalProvider mirrors the goal service semantics in memory, using the
// same derivation functions, so handler behavior can be tested without a
// database.
type memGoalProvider struct {
	goals map[uuid.UUID]*goal.Goal
}

func newMemGoalProvider() *memGoalProvider {
	return &memGoalProvider{goals: map[uuid.UUID]*goal.Goal{}}
}

func (p *memGoalProvider) CreateGoal(ctx context.Context, userID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		return nil, &services.ValidationError{Field: "title", Message: "must be at least 3 characters"}
	}
	now := time.Now().UTC()
	g := &goal.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		TargetDate:  req.TargetDate,
		Plan:        goal.FallbackPlan(title),
		ProgressLog: []goal.ProgressEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.goals[g.ID] = g
	return g, nil
}

func (p *memGoalProvider) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	out := []*goal.Goal{}
	for _, g := range p.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (p *memGoalProvider) GetGoal(ctx context.Context, userID string, id uuid.UUID) (*goal.Goal, error) {
	g, ok := p.goals[id]
	if !ok || g.UserID != userID {
		return nil, services.ErrNotFound
	}
	return g, nil
}

func (p *memGoalProvider) UpdatePlan(ctx context.Context, userID string, id uuid.UUID, plan []goal.Milestone) (*goal.Goal, error) {
	if len(plan) == 0 {
		return nil, &services.ValidationError{Field: "plan", Message: "must contain at least one milestone"}
	}
	g, err := p.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	g.Plan = plan
	g.Progress = goal.ComputeProgress(plan)
	g.Completed = goal.IsComplete(plan)
	g.ProgressLog = goal.UpsertLogEntry(g.ProgressLog, goal.Today(), g.Progress)
	g.UpdatedAt = time.Now().UTC()
	return g, nil
}

func authedRequest(method, target string, body []byte, clerkID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if clerkID != "" {
		ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
		req = req.WithContext(ctx)
	}
	return req
}

func goalRouter(h *GoalHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/goals", h.CreateGoal).Methods("POST")
	r.HandleFunc("/api/v1/goals", h.ListGoals).Methods("GET")
	r.HandleFunc("/api/v1/goals/{id}", h.GetGoal).Methods("GET")
	r.HandleFunc("/api/v1/goals/{id}", h.UpdateGoalPlan).Methods("PUT")
	return r
}

func TestCreateGoal(t *testing.T) {
	h := NewGoalHandler(newMemGoalProvider())
	rr := httptest.NewRecorder()

	body := []byte(`{"title": "Run a marathon", "targetDate": "2027-04-01"}`)
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals", body, "user_1"))

	require.Equal(t, http.StatusCreated, rr.Code)

	var created goal.Goal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Run a marathon", created.Title)
	assert.Equal(t, "user_1", created.UserID)
	assert.Equal(t, 0, created.Progress)
	assert.False(t, created.Completed)
	require.Len(t, created.Plan, 3)
	for _, m := range created.Plan {
		assert.False(t, m.Completed)
	}
	assert.Empty(t, created.ProgressLog)
}

func TestCreateGoal_TitleTooShort(t *testing.T) {
	h := NewGoalHandler(newMemGoalProvider())
	rr := httptest.NewRecorder()

	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals", []byte(`{"title": "ab"}`), "user_1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "title", resp["field"])
}

func TestCreateGoal_Unauthenticated(t *testing.T) {
	h := NewGoalHandler(newMemGoalProvider())
	rr := httptest.NewRecorder()

	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/goals", []byte(`{"title": "Run"}`), ""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetGoal_InvalidID(t *testing.T) {
	h := NewGoalHandler(newMemGoalProvider())
	rr := httptest.NewRecorder()

	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals/not-a-uuid", nil, "user_1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetGoal_ForeignGoalHidden(t *testing.T) {
	provider := newMemGoalProvider()
	h := NewGoalHandler(provider)

	owned, err := provider.CreateGoal(context.Background(), "user_1", &goal.CreateGoalRequest{Title: "Read more books"})
	require.NoError(t, err)

	// owner sees it
	rr := httptest.NewRecorder()
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals/"+owned.ID.String(), nil, "user_1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	// someone else gets the same 404 as for a missing goal
	rr = httptest.NewRecorder()
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals/"+owned.ID.String(), nil, "user_2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals/"+uuid.NewString(), nil, "user_1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateGoalPlan(t *testing.T) {
	provider := newMemGoalProvider()
	h := NewGoalHandler(provider)

	created, err := provider.CreateGoal(context.Background(), "user_1", &goal.CreateGoalRequest{Title: "Learn piano"})
	require.NoError(t, err)

	body := []byte(`{"plan": [
		{"text": "a", "completed": true},
		{"text": "b", "completed": false},
		{"text": "c", "completed": false}
	]}`)

	rr := httptest.NewRecorder()
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/goals/"+created.ID.String(), body, "user_1"))

	require.Equal(t, http.StatusOK, rr.Code)

	var updated goal.Goal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 33, updated.Progress)
	assert.False(t, updated.Completed)
	require.Len(t, updated.ProgressLog, 1)
	assert.Equal(t, goal.Today(), updated.ProgressLog[0].Date)
	assert.Equal(t, 33, updated.ProgressLog[0].Percent)
}

func TestUpdateGoalPlan_SameDayOverwrite(t *testing.T) {
	provider := newMemGoalProvider()
	h := NewGoalHandler(provider)

	created, err := provider.CreateGoal(context.Background(), "user_1", &goal.CreateGoalRequest{Title: "Learn piano"})
	require.NoError(t, err)

	put := func(plan string) *goal.Goal {
		rr := httptest.NewRecorder()
		body := []byte(fmt.Sprintf(`{"plan": %s}`, plan))
		goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/goals/"+created.ID.String(), body, "user_1"))
		require.Equal(t, http.StatusOK, rr.Code)
		var g goal.Goal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
		return &g
	}

	first := put(`[{"text": "a", "completed": true}, {"text": "b", "completed": false}]`)
	require.Len(t, first.ProgressLog, 1)
	assert.Equal(t, 50, first.ProgressLog[0].Percent)

	second := put(`[{"text": "a", "completed": true}, {"text": "b", "completed": true}]`)
	require.Len(t, second.ProgressLog, 1)
	assert.Equal(t, 100, second.ProgressLog[0].Percent)
	assert.True(t, second.Completed)
}

func TestUpdateGoalPlan_EmptyPlanRejected(t *testing.T) {
	provider := newMemGoalProvider()
	h := NewGoalHandler(provider)

	created, err := provider.CreateGoal(context.Background(), "user_1", &goal.CreateGoalRequest{Title: "Learn piano"})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/goals/"+created.ID.String(), []byte(`{"plan": []}`), "user_1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// stored goal unchanged
	g, err := provider.GetGoal(context.Background(), "user_1", created.ID)
	require.NoError(t, err)
	assert.Len(t, g.Plan, 3)
	assert.Empty(t, g.ProgressLog)
}

func TestUpdateGoalPlan_ForeignGoalHidden(t *testing.T) {
	provider := newMemGoalProvider()
	h := NewGoalHandler(provider)

	created, err := provider.CreateGoal(context.Background(), "user_1", &goal.CreateGoalRequest{Title: "Learn piano"})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	body := []byte(`{"plan": [{"text": "a", "completed": true}]}`)
	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodPut, "/api/v1/goals/"+created.ID.String(), body, "user_2"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListGoals_Unauthenticated(t *testing.T) {
	h := NewGoalHandler(newMemGoalProvider())
	rr := httptest.NewRecorder()

	goalRouter(h).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/goals", nil, ""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
