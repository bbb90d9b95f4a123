package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// chatClient talks to an OpenAI-compatible chat-completions endpoint. Both
// the OpenAI and xAI APIs share this wire shape; only base URL, key, and
// model differ.
type chatClient struct {
	name       string
	config     domain.LLMConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func newChatClient(name string, config domain.LLMConfig, logger *logrus.Logger) *chatClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &chatClient{
		name:       name,
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		log:        logger,
	}
}

// configured reports whether the client has an API key to send.
func (c *chatClient) configured() bool {
	return c.config.APIKey != ""
}

// complete sends one system+user exchange and returns the first choice.
func (c *chatClient) complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	if !c.configured() {
		return "", fmt.Errorf("%s: no API key configured", c.name)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doComplete(ctx, system, user, maxTokens, temperature)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("%s service unavailable (circuit breaker open)", c.name)
		}
		return "", fmt.Errorf("%s request failed: %w", c.name, err)
	}
	return result.(string), nil
}

func (c *chatClient) doComplete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// truncate caps text to avoid blowing model token limits.
func truncate(text string, limit int) string {
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
