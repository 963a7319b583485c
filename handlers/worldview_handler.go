package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"innerAtlasAPI/internal/types/worldview"
	"innerAtlasAPI/middleware"
	"innerAtlasAPI/services"
)

type WorldviewHandler struct {
	worldviews *services.WorldviewService
}

func NewWorldviewHandler(worldviews *services.WorldviewService) *WorldviewHandler {
	return &WorldviewHandler{worldviews: worldviews}
}

func (h *WorldviewHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"questions": h.worldviews.Questions()})
}

func (h *WorldviewHandler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	// Classification waits on the generative model.
	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req worldview.SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	blend, err := h.worldviews.SubmitAssessment(ctx, clerkID, req.Answers)
	if err != nil {
		respondWithServiceError(w, err, "Failed to classify worldview")
		return
	}

	respondWithJSON(w, http.StatusOK, blend)
}

func (h *WorldviewHandler) GetBlend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	blend, err := h.worldviews.GetBlend(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get worldview")
		return
	}

	respondWithJSON(w, http.StatusOK, blend)
}
