// Package assemblyai implements asr.Transcriber against the AssemblyAI REST
// API: upload the raw audio, submit a transcript job, then poll until the
// provider reports completed or error.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/speaklab/retell-be/internal/asr"
)

// Config holds AssemblyAI client configuration
type Config struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
}

// Client talks to the AssemblyAI v2 API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.assemblyai.com/v2"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}

	return &Client{
		cfg: cfg,
		// no client-level timeout: transcription duration is unbounded at this
		// layer, the caller's context is the only deadline
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Name() string { return "assemblyai" }

type transcriptResponse struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	Text   string     `json:"text"`
	Words  []asr.Word `json:"words"`
	Error  string     `json:"error"`
}

// Transcribe uploads the audio file and polls the transcript resource until it
// reaches a terminal status.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*asr.Transcript, error) {
	reqID := uuid.New().String()
	start := time.Now()

	audioURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}

	transcriptID, err := c.submit(ctx, audioURL)
	if err != nil {
		return nil, fmt.Errorf("submit transcript: %w", err)
	}

	c.logger.Info("asr.transcribe.submitted",
		slog.String("req_id", reqID),
		slog.String("transcript_id", transcriptID),
		slog.String("audio_path", audioPath),
	)

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("poll transcript: %w", ctx.Err())
		case <-ticker.C:
		}

		tr, err := c.poll(ctx, transcriptID)
		if err != nil {
			return nil, fmt.Errorf("poll transcript: %w", err)
		}

		switch tr.Status {
		case "completed":
			c.logger.Info("asr.transcribe.completed",
				slog.String("req_id", reqID),
				slog.String("transcript_id", transcriptID),
				slog.Int("words", len(tr.Words)),
				slog.Duration("elapsed", time.Since(start)),
			)
			return &asr.Transcript{Text: tr.Text, Words: tr.Words}, nil
		case "error":
			c.logger.Error("asr.transcribe.provider_error",
				slog.String("req_id", reqID),
				slog.String("transcript_id", transcriptID),
				slog.String("error", tr.Error),
			)
			return nil, fmt.Errorf("provider error: %s", tr.Error)
		}
		// queued / processing: keep polling
	}
}

func (c *Client) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	return out.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]any{"audio_url": audioURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}

	return out.ID, nil
}

func (c *Client) poll(ctx context.Context, transcriptID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/transcript/"+transcriptID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	return &out, nil
}

var _ asr.Transcriber = (*Client)(nil)
