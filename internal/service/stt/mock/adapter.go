// Package mock provides a deterministic STT adapter for running the service
// without provider credentials.
package mock

import (
	"context"
	"sync"

	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
)

// DefaultTranscripts provides sample call transcripts. Adapters cycle
// through them so repeated analyses show varied results.
var DefaultTranscripts = []string{
	"Hi, this is Jane Doe at 123 Main Street. My kitchen sink has been leaking since yesterday. " +
		"Representative: We can have a technician out Tuesday morning. Jane: Tuesday works, please book it.",
	"Hello, I'm calling about the invoice from my water heater installation last month. " +
		"I just need a copy emailed to me. Representative: Done, you should have it shortly.",
	"My bathroom faucet was dripping but I tightened the valve while we talked and it stopped. " +
		"Representative: Glad to hear it, call us back if it starts again.",
	"I'd like a quote for repiping the upstairs bathroom. Representative: I can take your details " +
		"and have an estimator call you back. Caller: Let me think about it and call you next week.",
}

// Adapter implements stt.Transcriber with canned transcripts.
type Adapter struct {
	mu          sync.Mutex
	calls       int
	transcripts []string
}

// New creates a new mock adapter cycling through DefaultTranscripts.
func New() *Adapter {
	return &Adapter{transcripts: DefaultTranscripts}
}

// NewWithTranscripts creates a mock adapter with a fixed transcript list.
func NewWithTranscripts(transcripts []string) *Adapter {
	return &Adapter{transcripts: transcripts}
}

// Transcribe returns the next canned transcript. The audio bytes are ignored
// beyond an emptiness check mirroring real provider behavior.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &stt.ServiceError{Provider: "mock", Err: err}
	}
	if len(audio) == 0 {
		return "", nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.transcripts) == 0 {
		return "", nil
	}
	text := a.transcripts[a.calls%len(a.transcripts)]
	a.calls++
	return text, nil
}
