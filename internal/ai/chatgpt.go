package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/deutschbot/pkg/models"
)

const (
	DefaultAPIURL    = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-4o-mini"
	DefaultBatchSize = 30
	defaultTimeout   = 30 * time.Second
)

// Config holds the settings for the OpenAI client
type Config struct {
	APIKey      string
	APIURL      string
	Model       string
	Timeout     time.Duration
	Concurrency int
}

// ChatGPT represents a client for the OpenAI chat completions API.
// It classifies German words and checks quiz answers.
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	timeout     time.Duration
	concurrency int
	client      *http.Client
	log         *slog.Logger
}

// New creates a new ChatGPT client
func New(cfg Config, logger *slog.Logger) (*ChatGPT, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatGPT{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
		client:      &http.Client{},
		log:         logger.With("component", "chatgpt"),
	}, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the API for a JSON object instead of free text
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete sends one chat request and returns the assistant's reply.
// Every failure is wrapped in models.ErrClassificationUnavailable.
func (c *ChatGPT) complete(ctx context.Context, request ChatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", models.ErrClassificationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(requestData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", models.ErrClassificationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %v", models.ErrClassificationUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", models.ErrClassificationUnavailable, err)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: API returned status %d", models.ErrClassificationUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: failed to decode response: %v", models.ErrClassificationUnavailable, err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", models.ErrClassificationUnavailable, response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d", models.ErrClassificationUnavailable, resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", models.ErrClassificationUnavailable)
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// completeJSON sends a JSON-mode request and decodes the reply into out.
func (c *ChatGPT) completeJSON(ctx context.Context, system, prompt string, temperature float64, out any) error {
	content, err := c.complete(ctx, ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: malformed JSON reply: %v", models.ErrClassificationUnavailable, err)
	}
	return nil
}

// Ping checks that the API key is accepted by listing the available models.
func (c *ChatGPT) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := strings.TrimSuffix(c.apiURL, "/chat/completions") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrClassificationUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API returned status %d", models.ErrClassificationUnavailable, resp.StatusCode)
	}
	return nil
}
