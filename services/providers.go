package services

import (
	"context"
	"errors"
	"fmt"

	"innerAtlasAPI/internal/types/dream"
	"innerAtlasAPI/internal/types/worldview"
)

// Generator is the external generation capability. It may be slow, down,
// or return garbage; every call is timeout-bounded and shape-checked by
// the implementation. A nil Generator is valid configuration.
type Generator interface {
	GenerateMilestones(ctx context.Context, title string) ([]string, error)
	AnalyzeDream(ctx context.Context, title, content string, tags []string) (*dream.DreamAnalysis, error)
	ClassifyWorldview(ctx context.Context, questions, answers []string) (*worldview.Blend, error)
}

// PushNotificationProvider lets the reminder worker send pushes without
// knowing about FCM. Injected from main.go.
type PushNotificationProvider interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// ErrNotFound covers both missing records and records owned by someone
// else. Handlers report the two identically so goal existence never leaks.
var ErrNotFound = errors.New("not found")

// ErrGenerationUnavailable means no generator is configured at all.
var ErrGenerationUnavailable = errors.New("generation capability not configured")

// ErrGenerationFailed wraps upstream generation errors that are surfaced
// to the caller (dream analysis, worldview classification).
var ErrGenerationFailed = errors.New("generation failed")

// ValidationError carries field-level detail back to the HTTP layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
