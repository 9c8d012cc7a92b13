package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPSuggester talks to an OpenAI-compatible chat-completions endpoint.
type HTTPSuggester struct {
	client *http.Client
}

func NewHTTPSuggester(client *http.Client) *HTTPSuggester {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSuggester{client: client}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *HTTPSuggester) Suggest(ctx context.Context, cfg Config, item Item) (Suggestion, error) {
	if cfg.APIKey == "" {
		return Suggestion{}, errors.New("grading API key not configured")
	}
	prompt := fmt.Sprintf(
		"Grade the candidate answer below on a 0-%d point scale.\n\nQuestion:\n%s\n\nAnswer:\n%s\n\nReply with JSON only: {\"score\": <number>, \"feedback\": \"<short justification>\"}",
		item.MaxPoints, item.Content, item.Answer)

	body, err := json.Marshal(chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a strict but fair grader for candidate assessments."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return Suggestion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Suggestion{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Suggestion{}, fmt.Errorf("grading service: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Suggestion{}, err
	}
	if len(cr.Choices) == 0 {
		return Suggestion{}, errors.New("grading service: empty response")
	}
	return parseSuggestion(cr.Choices[0].Message.Content, item.MaxPoints)
}

// parseSuggestion extracts the JSON object from the model output, tolerating
// prose or code fences around it, and clamps the score into [0, max].
func parseSuggestion(content string, max int) (Suggestion, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Suggestion{}, errors.New("grading service: no JSON in reply")
	}
	var sg Suggestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &sg); err != nil {
		return Suggestion{}, err
	}
	if sg.Score < 0 {
		sg.Score = 0
	}
	if max > 0 && sg.Score > float64(max) {
		sg.Score = float64(max)
	}
	return sg, nil
}
