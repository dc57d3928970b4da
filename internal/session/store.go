// Package session holds per-browser-session state for the analysis UI.
// Nothing here survives process restart; state lives exactly as long as the
// interactive session.
package session

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// Phase is the lifecycle phase of a session, derived from its state.
type Phase int

const (
	// PhaseEmpty - no audio uploaded yet.
	PhaseEmpty Phase = iota
	// PhaseUploaded - audio present, not yet analyzed.
	PhaseUploaded
	// PhaseAnalyzed - a transcription succeeded; Q&A is available.
	PhaseAnalyzed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "EMPTY"
	case PhaseUploaded:
		return "UPLOADED"
	case PhaseAnalyzed:
		return "ANALYZED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(p))
	}
}

// State is the per-session analysis state: the transcript, the raw
// completion text of the last analysis (re-parsed on each render), and the
// analyzed flag. Only the HTTP handlers mutate it, on their success paths.
type State struct {
	Transcript string
	Analysis   string
	Analyzed   bool
}

// Upload is the audio most recently uploaded in a session. It is held only
// in memory so the Analyse action can consume it.
type Upload struct {
	Data      []byte
	MediaType string
	Filename  string
}

// Flash is a one-shot notice rendered on the next page load.
type Flash struct {
	Kind string // "success", "warning" or "error"
	Text string
}

// Session is one browser session's mutable state.
type Session struct {
	ID string

	mu     sync.Mutex
	state  State
	upload *Upload
	answer string
	flash  *Flash
}

// Phase derives the lifecycle phase from the current state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state.Analyzed:
		return PhaseAnalyzed
	case s.upload != nil:
		return PhaseUploaded
	default:
		return PhaseEmpty
	}
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upload returns the current upload, or nil.
func (s *Session) Upload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload
}

// SetUpload replaces the uploaded audio and resets transcript, analysis and
// answer. A new upload always restarts the pipeline from scratch.
func (s *Session) SetUpload(u *Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upload = u
	s.state = State{}
	s.answer = ""
}

// SetTranscript records a successful transcription. This is the only place
// the analyzed flag is raised.
func (s *Session) SetTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Transcript = text
	s.state.Analyzed = true
}

// SetAnalysis records the raw completion text of a successful analysis call.
func (s *Session) SetAnalysis(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Analysis = raw
}

// Answer returns the last Q&A answer.
func (s *Session) Answer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answer
}

// SetAnswer records the answer to the last follow-up question.
func (s *Session) SetAnswer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = text
}

// SetFlash queues a one-shot notice for the next render.
func (s *Session) SetFlash(kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = &Flash{Kind: kind, Text: text}
}

// TakeFlash returns the queued notice, if any, and clears it.
func (s *Session) TakeFlash() *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = nil
	return f
}

const cookieName = "call_analysis_session"

// Manager maps session cookies to isolated Session instances. Each browser
// session gets its own state; there is no cross-session sharing.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for the request's cookie, creating a new session
// (and setting the cookie) when none exists.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(cookieName); err == nil {
		m.mu.RLock()
		s, ok := m.sessions[c.Value]
		m.mu.RUnlock()
		if ok {
			return s
		}
	}

	s := &Session{ID: uuid.New().String()}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Lookup returns the session with the given id, if it exists.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
