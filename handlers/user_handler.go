package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"innerAtlasAPI/internal/types/user"
	"innerAtlasAPI/middleware"
	"innerAtlasAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.RegisterDevice(ctx, clerkID, req.Token); err != nil {
		respondWithServiceError(w, err, "Failed to register device")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors onto the HTTP taxonomy:
// validation 400 with field detail, missing-or-foreign 404, generation
// 502/503, everything else a generic 500.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	var v *services.ValidationError
	switch {
	case errors.As(err, &v):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": v.Message, "field": v.Field})
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrGenerationUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Generation capability is not configured")
	case errors.Is(err, services.ErrGenerationFailed):
		log.Printf("Generation failure: %v", err)
		respondWithError(w, http.StatusBadGateway, "Generation failed, try again later")
	default:
		log.Printf("Handler error: %v", err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
