package mock

import (
	"context"
	"testing"
)

func TestTranscribe_CyclesThroughTranscripts(t *testing.T) {
	a := NewWithTranscripts([]string{"first call", "second call"})
	ctx := context.Background()

	for i, want := range []string{"first call", "second call", "first call"} {
		got, err := a.Transcribe(ctx, []byte("audio"), "wav")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestTranscribe_EmptyAudioYieldsEmptyTranscript(t *testing.T) {
	a := New()

	got, err := a.Transcribe(context.Background(), nil, "wav")
	if err != nil {
		t.Fatalf("expected no error for empty audio, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}

func TestTranscribe_CancelledContext(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Transcribe(ctx, []byte("audio"), "wav"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
