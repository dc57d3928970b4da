// Package stt defines the interface for speech-to-text providers.
package stt

import (
	"context"
	"fmt"
)

// Media subtypes accepted for uploaded audio.
const (
	MediaWAV = "wav"
	MediaMP3 = "mp3"
)

// SupportedMediaType reports whether the declared media subtype is one the
// transcription providers accept.
func SupportedMediaType(mediaType string) bool {
	return mediaType == MediaWAV || mediaType == MediaMP3
}

// Transcriber converts a complete recorded audio file into transcript text.
// An empty transcript is a valid result for audio with no recognized speech.
type Transcriber interface {
	// Transcribe sends the audio bytes to the provider and blocks until the
	// transcript is available or the context expires.
	Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error)
}

// ServiceError wraps a failure from an external speech-to-text provider.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcription service %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
