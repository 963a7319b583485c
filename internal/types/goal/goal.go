package goal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Milestone text is fixed after creation; only the completed flag is
// toggled through plan replacement.
type Milestone struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ProgressEntry records the derived percentage on a calendar day it
// changed. Dates are UTC days in YYYY-MM-DD form, at most one entry per day.
type ProgressEntry struct {
	Date    string `json:"date"`
	Percent int    `json:"percent"`
}

type Goal struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	Title       string          `json:"title" db:"title"`
	TargetDate  *string         `json:"targetDate,omitempty" db:"target_date"`
	Plan        []Milestone     `json:"plan" db:"plan"`
	Progress    int             `json:"progress" db:"progress"`
	Completed   bool            `json:"completed" db:"completed"`
	ProgressLog []ProgressEntry `json:"progressLog" db:"progress_log"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

type CreateGoalRequest struct {
	Title      string  `json:"title"`
	TargetDate *string `json:"targetDate,omitempty"`
}

type UpdatePlanRequest struct {
	Plan []Milestone `json:"plan"`
}

// DayFormat pins the log's day boundary to UTC calendar days.
const DayFormat = "2006-01-02"

// Today returns the current UTC day.
func Today() string {
	return time.Now().UTC().Format(DayFormat)
}

// FallbackPlan builds the deterministic three-step plan used when
// milestone generation is unavailable or returns garbage.
func FallbackPlan(title string) []Milestone {
	title = strings.TrimSpace(title)
	return []Milestone{
		{Text: fmt.Sprintf("Break \"%s\" into concrete weekly actions", title)},
		{Text: fmt.Sprintf("Work on \"%s\" consistently for two weeks", title)},
		{Text: fmt.Sprintf("Review progress on \"%s\" and adjust the approach", title)},
	}
}
