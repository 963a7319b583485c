package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"innerAtlasAPI/internal/types/worldview"
)

const classificationTimeout = 30 * time.Second

type WorldviewService struct {
	db        *pgxpool.Pool
	generator Generator
}

func NewWorldviewService(db *pgxpool.Pool, generator Generator) *WorldviewService {
	return &WorldviewService{db: db, generator: generator}
}

func (s *WorldviewService) Questions() []string {
	return worldview.Questions
}

// SubmitAssessment classifies the answers into a stage blend and upserts
// it: one blend per user, a new assessment replaces the old one.
func (s *WorldviewService) SubmitAssessment(ctx context.Context, userID string, answers []string) (*worldview.Blend, error) {
	if len(answers) != len(worldview.Questions) {
		return nil, invalid("answers", fmt.Sprintf("expected %d answers, got %d", len(worldview.Questions), len(answers)))
	}
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, invalid("answers", fmt.Sprintf("answer %d is empty", i))
		}
	}
	if s.generator == nil {
		return nil, ErrGenerationUnavailable
	}

	genCtx, cancel := context.WithTimeout(ctx, classificationTimeout)
	defer cancel()

	blend, err := s.generator.ClassifyWorldview(genCtx, worldview.Questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	stagesJSON, err := json.Marshal(blend.Stages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stages: %w", err)
	}

	query := `
	INSERT INTO worldview_blends (user_id, stages, primary_stage, summary, assessed_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id)
	DO UPDATE SET stages = $2, primary_stage = $3, summary = $4, assessed_at = $5
	`
	_, err = s.db.Exec(ctx, query, userID, stagesJSON, blend.Primary, blend.Summary, blend.AssessedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store worldview blend: %w", err)
	}

	return blend, nil
}

func (s *WorldviewService) GetBlend(ctx context.Context, userID string) (*worldview.Blend, error) {
	query := `
	SELECT stages, primary_stage, summary, assessed_at
	FROM worldview_blends
	WHERE user_id = $1
	`
	blend := &worldview.Blend{}
	var stagesJSON []byte
	err := s.db.QueryRow(ctx, query, userID).Scan(&stagesJSON, &blend.Primary, &blend.Summary, &blend.AssessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get worldview blend: %w", err)
	}

	if err := json.Unmarshal(stagesJSON, &blend.Stages); err != nil {
		return nil, fmt.Errorf("user %s has malformed stored worldview stages: %w", userID, err)
	}

	return blend, nil
}
