package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/venture-data/Call-Analysis-Demo/internal/observability/metrics"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/llm"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
)

// ErrEmptyQuestion is returned when a follow-up question is blank; no
// completion request is issued in that case.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Analyzer orchestrates the transcription and completion steps of one call
// analysis. The two remote calls are independently failable so a transcript
// can still be shown when the completion step fails.
type Analyzer struct {
	transcriber stt.Transcriber
	completer   llm.Completer
	provider    string
	model       string
	metrics     *metrics.Metrics
}

// NewAnalyzer creates an Analyzer around the given providers.
func NewAnalyzer(transcriber stt.Transcriber, completer llm.Completer, provider, model string, m *metrics.Metrics) *Analyzer {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Analyzer{
		transcriber: transcriber,
		completer:   completer,
		provider:    provider,
		model:       model,
		metrics:     m,
	}
}

// Transcribe converts the uploaded audio to transcript text. An empty
// transcript is a valid outcome.
func (a *Analyzer) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	start := time.Now()
	text, err := a.transcriber.Transcribe(ctx, audio, mediaType)
	a.metrics.RecordTranscription(a.provider, err, time.Since(start).Seconds())
	return text, err
}

// Analyze runs the classification completion over a transcript and returns
// the raw reply text. Callers parse the reply with ParseAnalysis; the raw
// text is stored so each render can re-parse it.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	prompt := BuildAnalysisPrompt(transcript)
	msgs := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

	start := time.Now()
	// Temperature 0 keeps the classification reproducible.
	raw, err := a.completer.Complete(ctx, msgs, a.model, 0)
	a.metrics.RecordCompletion(a.model, err, time.Since(start).Seconds())
	return raw, err
}

// Ask answers a free-text question grounded in the transcript. A blank
// question returns ErrEmptyQuestion without contacting the provider.
func (a *Analyzer) Ask(ctx context.Context, transcript, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	msgs := BuildQuestionMessages(transcript, question)

	start := time.Now()
	answer, err := a.completer.Complete(ctx, msgs, a.model, llm.DefaultTemperature)
	a.metrics.RecordCompletion(a.model, err, time.Since(start).Seconds())
	return answer, err
}

// Model returns the configured completion model identifier.
func (a *Analyzer) Model() string {
	return a.model
}

// Provider returns the configured transcription provider name.
func (a *Analyzer) Provider() string {
	return a.provider
}
