package dream

import (
	"time"

	"github.com/google/uuid"
)

type Dream struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    string         `json:"userId" db:"user_id"`
	Title     string         `json:"title" db:"title"`
	Content   string         `json:"content" db:"content"`
	Mood      *string        `json:"mood,omitempty" db:"mood"`
	Tags      []string       `json:"tags" db:"tags"`
	Analysis  *DreamAnalysis `json:"analysis,omitempty" db:"analysis"`
	DreamDate string         `json:"dreamDate" db:"dream_date"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// DreamAnalysis is the stored output of the generative model for one dream.
type DreamAnalysis struct {
	Summary        string    `json:"summary"`
	Themes         []string  `json:"themes"`
	Emotions       []string  `json:"emotions"`
	Interpretation string    `json:"interpretation"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

type CreateDreamRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Mood      *string  `json:"mood,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	DreamDate *string  `json:"dreamDate,omitempty"`
}

// TagCount is one row of the per-user tag frequency report.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
