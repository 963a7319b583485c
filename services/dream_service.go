package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"innerAtlasAPI/internal/types/dream"
	"innerAtlasAPI/internal/types/goal"
)

// analysisTimeout bounds the dream analysis call. Unlike milestone
// generation there is no fallback here: failure is surfaced.
const analysisTimeout = 30 * time.Second

type DreamService struct {
	db        *pgxpool.Pool
	generator Generator
}

func NewDreamService(db *pgxpool.Pool, generator Generator) *DreamService {
	return &DreamService{db: db, generator: generator}
}

func (s *DreamService) CreateDream(ctx context.Context, userID string, req *dream.CreateDreamRequest) (*dream.Dream, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "must not be empty")
	}
	content := strings.TrimSpace(req.Content)
	if len(content) < 10 {
		return nil, invalid("content", "must be at least 10 characters")
	}

	dreamDate := goal.Today()
	if req.DreamDate != nil && *req.DreamDate != "" {
		parsed, err := time.Parse(goal.DayFormat, *req.DreamDate)
		if err != nil {
			return nil, invalid("dreamDate", "must be a valid date in YYYY-MM-DD format")
		}
		dreamDate = parsed.Format(goal.DayFormat)
	}

	var mood *string
	if req.Mood != nil && strings.TrimSpace(*req.Mood) != "" {
		m := strings.TrimSpace(*req.Mood)
		mood = &m
	}

	now := time.Now().UTC()
	d := &dream.Dream{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Mood:      mood,
		Tags:      normalizeTags(req.Tags),
		DreamDate: dreamDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tagsJSON, err := json.Marshal(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
	INSERT INTO dreams (id, user_id, title, content, mood, tags, analysis, dream_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8, $9)
	`
	_, err = s.db.Exec(ctx, query,
		d.ID, d.UserID, d.Title, d.Content, d.Mood, tagsJSON, d.DreamDate, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dream: %w", err)
	}

	return d, nil
}

func (s *DreamService) ListDreams(ctx context.Context, userID string) ([]*dream.Dream, error) {
	query := `
	SELECT id, user_id, title, content, mood, tags, analysis, dream_date, created_at, updated_at
	FROM dreams
	WHERE user_id = $1
	ORDER BY dream_date DESC, created_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dreams: %w", err)
	}
	defer rows.Close()

	dreams := []*dream.Dream{}
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list dreams: %w", err)
	}

	return dreams, nil
}

func (s *DreamService) GetDream(ctx context.Context, userID string, id uuid.UUID) (*dream.Dream, error) {
	query := `
	SELECT id, user_id, title, content, mood, tags, analysis, dream_date, created_at, updated_at
	FROM dreams
	WHERE id = $1 AND user_id = $2
	`
	d, err := scanDream(s.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// AnalyzeDream runs the generative analysis for one dream and persists the
// result on the row. Repeated calls overwrite the previous analysis.
func (s *DreamService) AnalyzeDream(ctx context.Context, userID string, id uuid.UUID) (*dream.Dream, error) {
	if s.generator == nil {
		return nil, ErrGenerationUnavailable
	}

	d, err := s.GetDream(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	analysis, err := s.generator.AnalyzeDream(genCtx, d.Title, d.Content, d.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	d.Analysis = analysis
	d.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE dreams SET analysis = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
	`
	tag, err := s.db.Exec(ctx, query, analysisJSON, d.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return d, nil
}

// TagFrequency counts tag occurrences across the user's dreams, most
// frequent first, ties broken alphabetically.
func (s *DreamService) TagFrequency(ctx context.Context, userID string) ([]dream.TagCount, error) {
	rows, err := s.db.Query(ctx, `SELECT tags FROM dreams WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var tagsJSON []byte
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		var tags []string
		if err := json.Unmarshal(tagsJSON, &tags); err != nil {
			return nil, fmt.Errorf("malformed stored tags: %w", err)
		}
		for _, t := range tags {
			counts[t]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}

	return SortTagCounts(counts), nil
}

// SortTagCounts orders a tag histogram by descending count, then tag name.
func SortTagCounts(counts map[string]int) []dream.TagCount {
	out := make([]dream.TagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, dream.TagCount{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func normalizeTags(raw []string) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func scanDream(row pgx.Row) (*dream.Dream, error) {
	d := &dream.Dream{}
	var (
		dreamDate    time.Time
		tagsJSON     []byte
		analysisJSON []byte
	)

	err := row.Scan(
		&d.ID, &d.UserID, &d.Title, &d.Content, &d.Mood, &tagsJSON,
		&analysisJSON, &dreamDate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan dream: %w", err)
	}

	d.DreamDate = dreamDate.Format(goal.DayFormat)
	if err := json.Unmarshal(tagsJSON, &d.Tags); err != nil {
		return nil, fmt.Errorf("dream %s has malformed stored tags: %w", d.ID, err)
	}
	if analysisJSON != nil {
		var analysis dream.DreamAnalysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return nil, fmt.Errorf("dream %s has malformed stored analysis: %w", d.ID, err)
		}
		d.Analysis = &analysis
	}

	return d, nil
}
