package worldview

import (
	"fmt"
	"time"
)

// Spiral Dynamics stage names, in ascending order of the model.
const (
	StageBeige     = "beige"
	StagePurple    = "purple"
	StageRed       = "red"
	StageBlue      = "blue"
	StageOrange    = "orange"
	StageGreen     = "green"
	StageYellow    = "yellow"
	StageTurquoise = "turquoise"
)

var Stages = []string{
	StageBeige, StagePurple, StageRed, StageBlue,
	StageOrange, StageGreen, StageYellow, StageTurquoise,
}

// Questions is the fixed assessment questionnaire. Answer order must match.
var Questions = []string{
	"When you face a major life decision, what do you rely on most to make it?",
	"What does a meaningful life look like to you?",
	"How do you react when someone in authority tells you what to do?",
	"What role do tradition and community play in your life?",
	"How do you define success for yourself?",
	"When people around you disagree strongly, what do you usually do?",
	"What do you believe is humanity's biggest problem right now?",
	"How has your view of the world changed over the past five years?",
}

type StageScore struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// Blend is a user's classified worldview: a percentage mix over stages
// summing to 100, plus the dominant stage and a short narrative.
type Blend struct {
	Stages     []StageScore `json:"stages"`
	Primary    string       `json:"primary"`
	Summary    string       `json:"summary"`
	AssessedAt time.Time    `json:"assessedAt"`
}

type SubmitAssessmentRequest struct {
	Answers []string `json:"answers"`
}

func validStage(name string) bool {
	for _, s := range Stages {
		if s == name {
			return true
		}
	}
	return false
}

// Normalize validates a blend coming back from the generative model and
// repairs off-by-one rounding in the percentage sum by adjusting the
// primary stage. Anything further off than that is rejected.
func (b *Blend) Normalize() error {
	if len(b.Stages) == 0 {
		return fmt.Errorf("blend has no stages")
	}
	if !validStage(b.Primary) {
		return fmt.Errorf("unknown primary stage %q", b.Primary)
	}
	sum := 0
	primaryIdx := -1
	for i, s := range b.Stages {
		if !validStage(s.Stage) {
			return fmt.Errorf("unknown stage %q", s.Stage)
		}
		if s.Percent < 0 || s.Percent > 100 {
			return fmt.Errorf("stage %s has percent %d out of range", s.Stage, s.Percent)
		}
		if s.Stage == b.Primary {
			primaryIdx = i
		}
		sum += s.Percent
	}
	if primaryIdx == -1 {
		return fmt.Errorf("primary stage %q missing from stage list", b.Primary)
	}
	if sum != 100 {
		if sum < 99 || sum > 101 {
			return fmt.Errorf("stage percents sum to %d, expected 100", sum)
		}
		b.Stages[primaryIdx].Percent += 100 - sum
	}
	return nil
}
