package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"innerAtlasAPI/internal/types/goal"
	"innerAtlasAPI/middleware"
)

// GoalProvider is what the HTTP layer needs from the goal service.
type GoalProvider interface {
	CreateGoal(ctx context.Context, userID string, req *goal.CreateGoalRequest) (*goal.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error)
	GetGoal(ctx context.Context, userID string, id uuid.UUID) (*goal.Goal, error)
	UpdatePlan(ctx context.Context, userID string, id uuid.UUID, plan []goal.Milestone) (*goal.Goal, error)
}

type GoalHandler struct {
	goals GoalProvider
}

func NewGoalHandler(goals GoalProvider) *GoalHandler {
	return &GoalHandler{goals: goals}
}

func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	// Goal creation may wait on milestone generation, so it gets a longer
	// budget than the plain CRUD handlers.
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req goal.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.goals.CreateGoal(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create goal")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	goals, err := h.goals.ListGoals(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list goals")
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	g, err := h.goals.GetGoal(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get goal")
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

func (h *GoalHandler) UpdateGoalPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	var req goal.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.goals.UpdatePlan(ctx, clerkID, id, req.Plan)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update goal")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
