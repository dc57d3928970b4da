// Package whisper provides an OpenAI Whisper speech-to-text adapter.
package whisper

import (
	"bytes"
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
)

const providerName = "whisper"

// Adapter implements stt.Transcriber using the OpenAI audio transcription API.
type Adapter struct {
	cli   *openai.Client
	model string
}

// New creates a new Whisper adapter. baseURL may be empty for the default
// OpenAI endpoint, or point at an OpenAI-compatible gateway.
func New(apiKey, baseURL string) (*Adapter, error) {
	if apiKey == "" {
		return nil, errors.New("whisper: API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Adapter{
		cli:   openai.NewClientWithConfig(cfg),
		model: openai.Whisper1,
	}, nil
}

// Transcribe sends the audio bytes to the transcription endpoint. The media
// subtype is only used to name the in-memory upload so the API can detect
// the container format.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	resp, err := a.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "call." + mediaType,
	})
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: err}
	}
	return resp.Text, nil
}
