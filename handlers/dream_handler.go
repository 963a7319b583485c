package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"innerAtlasAPI/internal/types/dream"
	"innerAtlasAPI/middleware"
	"innerAtlasAPI/services"
)

type DreamHandler struct {
	dreams *services.DreamService
}

func NewDreamHandler(dreams *services.DreamService) *DreamHandler {
	return &DreamHandler{dreams: dreams}
}

func (h *DreamHandler) CreateDream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req dream.CreateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.dreams.CreateDream(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create dream")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *DreamHandler) ListDreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	dreams, err := h.dreams.ListDreams(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list dreams")
		return
	}

	respondWithJSON(w, http.StatusOK, dreams)
}

func (h *DreamHandler) GetDream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dream id")
		return
	}

	d, err := h.dreams.GetDream(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get dream")
		return
	}

	respondWithJSON(w, http.StatusOK, d)
}

func (h *DreamHandler) AnalyzeDream(w http.ResponseWriter, r *http.Request) {
	// Analysis waits on the generative model.
	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dream id")
		return
	}

	analyzed, err := h.dreams.AnalyzeDream(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to analyze dream")
		return
	}

	respondWithJSON(w, http.StatusOK, analyzed)
}

func (h *DreamHandler) GetTagFrequency(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	counts, err := h.dreams.TagFrequency(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to count tags")
		return
	}

	respondWithJSON(w, http.StatusOK, counts)
}
