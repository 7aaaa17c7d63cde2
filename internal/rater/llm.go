package rater

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/apiclient"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
)

const ratingPrompt = `You are screening software engineers as recruiting leads.
Score the candidate below on each criterion from 0 to 100: technical-depth,
project-impact, activity-consistency, communication, seniority-signal.
Respond with JSON only: {"score": <overall 0-100>, "breakdown": {<criterion>: <score>}, "tags": [<short labels>]}.

Candidate:
`

const summaryPrompt = `Summarize the following professional experience in at
most five sentences, focusing on roles, technologies and seniority:

`

// LlmRater applies the rubric by calling a chat-completions endpoint.
type LlmRater struct {
	Logger     log.Logger
	Config     *cfg.Config
	client     *apiclient.Client
	httpClient *http.Client
}

func NewLlmRater(logger log.Logger, config *cfg.Config) *LlmRater {
	return &LlmRater{
		Logger:     logger,
		Config:     config,
		client:     apiclient.NewClient(logger, config),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
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

func (r *LlmRater) Rate(ctx context.Context, user *model.User) (*Result, error) {
	content, err := r.complete(ctx, ratingPrompt+BuildDocument(user))
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return nil, fmt.Errorf("llm: cannot parse rating response: %w", err)
	}
	if result.Breakdown == nil {
		result.Breakdown = model.RatingBreakdown{}
	}
	if result.Tags == nil {
		result.Tags = model.StringList{}
	}
	return result, nil
}

// Summarize implements enrich.Summarizer for the LinkedIn summary facet.
func (r *LlmRater) Summarize(ctx context.Context, text string) (string, error) {
	return r.complete(ctx, summaryPrompt+text)
}

func (r *LlmRater) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       r.Config.Llm.Model,
		Temperature: r.Config.Llm.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	response := &chatResponse{}
	err = r.client.Call(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, r.Config.Llm.ApiUrl, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		if r.Config.Llm.ApiKey != "" {
			req.Header.Set("Authorization", "Bearer "+r.Config.Llm.ApiKey)
		}

		resp, doErr := r.httpClient.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return &apiclient.RateLimitError{Reset: time.Now().Add(time.Minute)}
		case resp.StatusCode >= 500:
			return &apiclient.ServerError{Status: resp.StatusCode}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("llm: unexpected response: %s", resp.Status)
		}

		return json.NewDecoder(resp.Body).Decode(response)
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion")
	}
	return response.Choices[0].Message.Content, nil
}
