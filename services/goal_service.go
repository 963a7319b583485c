package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"innerAtlasAPI/internal/types/goal"
)

// generationTimeout bounds the milestone generation call so goal creation
// never hangs on the upstream model.
const generationTimeout = 15 * time.Second

type GoalService struct {
	db        *pgxpool.Pool
	generator Generator
}

func NewGoalService(db *pgxpool.Pool, generator Generator) *GoalService {
	return &GoalService{db: db, generator: generator}
}

func (s *GoalService) CreateGoal(ctx context.Context, userID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		return nil, invalid("title", "must be at least 3 characters")
	}

	var targetDate *string
	if req.TargetDate != nil && *req.TargetDate != "" {
		parsed, err := time.Parse(goal.DayFormat, *req.TargetDate)
		if err != nil {
			return nil, invalid("targetDate", "must be a valid date in YYYY-MM-DD format")
		}
		formatted := parsed.Format(goal.DayFormat)
		targetDate = &formatted
	}

	now := time.Now().UTC()
	g := &goal.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		TargetDate:  targetDate,
		Plan:        s.resolvePlan(ctx, title),
		Progress:    0,
		Completed:   false,
		ProgressLog: []goal.ProgressEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	planJSON, err := json.Marshal(g.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	logJSON, err := json.Marshal(g.ProgressLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress log: %w", err)
	}

	query := `
	INSERT INTO goals (id, user_id, title, target_date, plan, progress, completed, progress_log, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.Exec(ctx, query,
		g.ID, g.UserID, g.Title, g.TargetDate, planJSON, g.Progress, g.Completed, logJSON, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return g, nil
}

// resolvePlan obtains the initial milestone set. Generation failures are
// swallowed: creation must never fail because the upstream model did.
func (s *GoalService) resolvePlan(ctx context.Context, title string) []goal.Milestone {
	if s.generator == nil {
		return goal.FallbackPlan(title)
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	texts, err := s.generator.GenerateMilestones(genCtx, title)
	if err != nil {
		log.Printf("GoalService: milestone generation failed, using fallback plan: %v", err)
		return goal.FallbackPlan(title)
	}

	plan := make([]goal.Milestone, 0, len(texts))
	for _, t := range texts {
		plan = append(plan, goal.Milestone{Text: t})
	}
	return plan
}

func (s *GoalService) ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error) {
	query := `
	SELECT id, user_id, title, target_date, plan, progress, completed, progress_log, created_at, updated_at
	FROM goals
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return goals, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID string, id uuid.UUID) (*goal.Goal, error) {
	query := `
	SELECT id, user_id, title, target_date, plan, progress, completed, progress_log, created_at, updated_at
	FROM goals
	WHERE id = $1 AND user_id = $2
	`
	g, err := scanGoal(s.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// UpdatePlan is the only mutation on an existing goal: whole-plan
// replacement. Progress, completion and the daily log entry are derived
// here and written in a single UPDATE.
func (s *GoalService) UpdatePlan(ctx context.Context, userID string, id uuid.UUID, plan []goal.Milestone) (*goal.Goal, error) {
	if len(plan) == 0 {
		return nil, invalid("plan", "must contain at least one milestone")
	}
	for i, m := range plan {
		if strings.TrimSpace(m.Text) == "" {
			return nil, invalid("plan", fmt.Sprintf("milestone %d has empty text", i))
		}
	}

	g, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	g.Plan = plan
	g.Progress = goal.ComputeProgress(plan)
	g.Completed = goal.IsComplete(plan)
	g.ProgressLog = goal.UpsertLogEntry(g.ProgressLog, goal.Today(), g.Progress)
	g.UpdatedAt = time.Now().UTC()

	planJSON, err := json.Marshal(g.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	logJSON, err := json.Marshal(g.ProgressLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress log: %w", err)
	}

	query := `
	UPDATE goals
	SET plan = $1, progress = $2, completed = $3, progress_log = $4, updated_at = $5
	WHERE id = $6 AND user_id = $7
	`
	tag, err := s.db.Exec(ctx, query,
		planJSON, g.Progress, g.Completed, logJSON, g.UpdatedAt, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return g, nil
}

// scanGoal decodes one goal row, rejecting malformed stored jsonb instead
// of trusting it.
func scanGoal(row pgx.Row) (*goal.Goal, error) {
	g := &goal.Goal{}
	var (
		targetDate *time.Time
		planJSON   []byte
		logJSON    []byte
	)

	err := row.Scan(
		&g.ID, &g.UserID, &g.Title, &targetDate, &planJSON,
		&g.Progress, &g.Completed, &logJSON, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}

	if targetDate != nil {
		formatted := targetDate.Format(goal.DayFormat)
		g.TargetDate = &formatted
	}
	if err := json.Unmarshal(planJSON, &g.Plan); err != nil {
		return nil, fmt.Errorf("goal %s has malformed stored plan: %w", g.ID, err)
	}
	if len(g.Plan) == 0 {
		return nil, fmt.Errorf("goal %s has empty stored plan", g.ID)
	}
	if err := json.Unmarshal(logJSON, &g.ProgressLog); err != nil {
		return nil, fmt.Errorf("goal %s has malformed stored progress log: %w", g.ID, err)
	}

	return g, nil
}
