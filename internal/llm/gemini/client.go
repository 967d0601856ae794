// Package gemini implements llm.Generator against the Gemini generateContent
// REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/speaklab/retell-be/internal/llm"
)

// Config holds Gemini client configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client talks to the Gemini API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &Client{
		cfg: cfg,
		// the caller's context carries the request deadline (120s card / 180s summary)
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Name() string { return "gemini" }

// harm categories are all set to BLOCK_NONE: transcripts of learner speech
// routinely trip false positives otherwise.
var safetySettings = []map[string]string{
	{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
	{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to the configured model and returns the first
// candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"safetySettings": safetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("llm.generate.request",
		slog.String("req_id", reqID),
		slog.String("model", c.cfg.Model),
		slog.Int("prompt_len", len(prompt)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("llm.generate.send_error",
			slog.String("req_id", reqID),
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)),
		)
		return "", fmt.Errorf("gemini http error: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		c.logger.Error("llm.generate.status_error",
			slog.String("req_id", reqID),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrEmptyResponse
	}

	c.logger.Info("llm.generate.ok",
		slog.String("req_id", reqID),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out.Candidates[0].Content.Parts[0].Text, nil
}

var _ llm.Generator = (*Client)(nil)
