// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
)

const providerName = "google"

// Adapter implements stt.Transcriber using the synchronous Recognize API.
// Uploaded calls are complete files, so batch recognition is used rather
// than the streaming API.
type Adapter struct {
	client       *speech.Client
	languageCode string
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, languageCode string) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &Adapter{client: c, languageCode: languageCode}, nil
}

// Transcribe runs batch recognition over the full audio content and joins
// the top alternative of each result into one transcript string.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	cfg := &speechpb.RecognitionConfig{
		LanguageCode: a.languageCode,
	}
	if mediaType == stt.MediaMP3 {
		cfg.Encoding = speechpb.RecognitionConfig_MP3
		cfg.SampleRateHertz = 16000
	}
	// For WAV the encoding is left unspecified so the service reads the
	// format from the file header.

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", &stt.ServiceError{Provider: providerName, Err: err}
	}

	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the underlying gRPC connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}
