package ai

import "strings"

// BuildMilestonePrompt formats the goal title for the milestone request.
func BuildMilestonePrompt(title string) string {
	var b strings.Builder
	b.WriteString("goal_title: ")
	b.WriteString(strings.TrimSpace(title))
	b.WriteString("\n")
	return b.String()
}

// BuildDreamPrompt formats one dream entry for analysis.
func BuildDreamPrompt(title, content string, tags []string) string {
	var b strings.Builder

	b.WriteString("dream_title: ")
	b.WriteString(strings.TrimSpace(title))
	b.WriteString("\n")

	b.WriteString("dream_content: ")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n")

	if len(tags) > 0 {
		b.WriteString("dream_tags: ")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

// BuildWorldviewPrompt pairs each question with its answer, in order.
func BuildWorldviewPrompt(questions, answers []string) string {
	var b strings.Builder
	for i, q := range questions {
		b.WriteString("question: ")
		b.WriteString(q)
		b.WriteString("\n")
		b.WriteString("answer: ")
		if i < len(answers) {
			b.WriteString(strings.TrimSpace(answers[i]))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
