package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"innerAtlasAPI/internal/types/dream"
	"innerAtlasAPI/internal/types/worldview"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible chat-completions endpoint. All
// calls are bounded by the caller's context; responses are parsed and
// shape-checked before anything reaches the database.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func New(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one system+user exchange and returns the raw assistant text.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
		Temperature:    0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion API error: %s", parsed.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d", res.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// GenerateMilestones asks the model for 3-5 short milestone texts for a
// goal title. The shape is validated here; callers fall back on error.
func (c *Client) GenerateMilestones(ctx context.Context, title string) ([]string, error) {
	content, err := c.complete(ctx, milestoneSystemPrompt, BuildMilestonePrompt(title))
	if err != nil {
		return nil, err
	}

	var out struct {
		Milestones []string `json:"milestones"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("malformed milestone response: %w", err)
	}
	if len(out.Milestones) < 3 || len(out.Milestones) > 5 {
		return nil, fmt.Errorf("expected 3-5 milestones, got %d", len(out.Milestones))
	}
	for i, m := range out.Milestones {
		out.Milestones[i] = strings.TrimSpace(m)
		if out.Milestones[i] == "" {
			return nil, fmt.Errorf("milestone %d is empty", i)
		}
	}
	return out.Milestones, nil
}

// AnalyzeDream returns a psychological reading of one dream entry.
func (c *Client) AnalyzeDream(ctx context.Context, title, content string, tags []string) (*dream.DreamAnalysis, error) {
	raw, err := c.complete(ctx, dreamSystemPrompt, BuildDreamPrompt(title, content, tags))
	if err != nil {
		return nil, err
	}

	var analysis dream.DreamAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis response: %w", err)
	}
	if strings.TrimSpace(analysis.Summary) == "" || strings.TrimSpace(analysis.Interpretation) == "" {
		return nil, fmt.Errorf("analysis response missing summary or interpretation")
	}
	analysis.GeneratedAt = time.Now().UTC()
	return &analysis, nil
}

// ClassifyWorldview maps questionnaire answers onto a Spiral Dynamics
// stage blend. The blend is normalized (sum check, stage names) before use.
func (c *Client) ClassifyWorldview(ctx context.Context, questions, answers []string) (*worldview.Blend, error) {
	raw, err := c.complete(ctx, worldviewSystemPrompt, BuildWorldviewPrompt(questions, answers))
	if err != nil {
		return nil, err
	}

	var blend worldview.Blend
	if err := json.Unmarshal([]byte(raw), &blend); err != nil {
		return nil, fmt.Errorf("malformed classification response: %w", err)
	}
	if err := blend.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid classification response: %w", err)
	}
	blend.AssessedAt = time.Now().UTC()
	return &blend, nil
}
