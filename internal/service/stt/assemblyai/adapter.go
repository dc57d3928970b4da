// Package assemblyai provides an AssemblyAI speech-to-text adapter.
//
// The REST flow is upload -> submit -> poll: raw audio bytes are uploaded to
// a private URL, a transcript job is submitted for that URL, and the job is
// polled until it reaches a terminal status.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/venture-data/Call-Analysis-Demo/internal/observability/logging"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
)

const providerName = "assemblyai"

// Config holds AssemblyAI adapter settings.
type Config struct {
	APIKey       string
	BaseURL      string // default https://api.assemblyai.com
	LanguageCode string
	PollInterval time.Duration
}

// Adapter implements stt.Transcriber against the AssemblyAI v2 REST API.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New creates a new AssemblyAI adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("assemblyai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.assemblyai.com"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"` // queued, processing, completed, error
	Text   *string `json:"text"`
	Error  string  `json:"error,omitempty"`
}

// Transcribe uploads the audio, submits a transcript job and polls until it
// completes. A nil text on a completed job is returned as an empty
// transcript, not an error.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	log := logging.WithComponent("stt.assemblyai")

	uploadURL, err := a.upload(ctx, audio)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: err}
	}

	id, err := a.submit(ctx, uploadURL)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: err}
	}
	log.Debug().Str("transcriptId", id).Str("mediaType", mediaType).Msg("transcript job submitted")

	text, err := a.poll(ctx, id)
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: err}
	}
	return text, nil
}

func (a *Adapter) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := a.doJSON(req, &out); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", errors.New("upload: empty upload_url in response")
	}
	return out.UploadURL, nil
}

func (a *Adapter) submit(ctx context.Context, audioURL string) (string, error) {
	body := map[string]any{"audio_url": audioURL}
	if a.cfg.LanguageCode != "" {
		body["language_code"] = a.cfg.LanguageCode
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := a.doJSON(req, &out); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if out.Status == "error" {
		return "", fmt.Errorf("submit: %s", out.Error)
	}
	if out.ID == "" {
		return "", errors.New("submit: empty transcript id in response")
	}
	return out.ID, nil
}

func (a *Adapter) poll(ctx context.Context, id string) (string, error) {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("poll: %w", ctx.Err())
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", a.cfg.APIKey)

		var out transcriptResponse
		if err := a.doJSON(req, &out); err != nil {
			return "", fmt.Errorf("poll: %w", err)
		}

		switch out.Status {
		case "completed":
			if out.Text == nil {
				return "", nil
			}
			return *out.Text, nil
		case "error":
			return "", fmt.Errorf("transcription failed: %s", out.Error)
		case "queued", "processing":
			// keep polling
		default:
			return "", fmt.Errorf("unexpected transcript status %q", out.Status)
		}
	}
}

func (a *Adapter) doJSON(req *http.Request, target any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
