package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSession_DefaultsEmpty(t *testing.T) {
	s := &Session{ID: "s-1"}

	if s.Phase() != PhaseEmpty {
		t.Errorf("expected phase EMPTY, got %s", s.Phase())
	}
	st := s.State()
	if st.Transcript != "" || st.Analysis != "" || st.Analyzed {
		t.Errorf("expected zero state, got %+v", st)
	}
	if s.Upload() != nil {
		t.Error("expected no upload")
	}
}

func TestSession_PhaseTransitions(t *testing.T) {
	s := &Session{ID: "s-1"}

	s.SetUpload(&Upload{Data: []byte("audio"), MediaType: "wav"})
	if s.Phase() != PhaseUploaded {
		t.Errorf("expected phase UPLOADED after upload, got %s", s.Phase())
	}

	s.SetTranscript("hello")
	if s.Phase() != PhaseAnalyzed {
		t.Errorf("expected phase ANALYZED after transcription, got %s", s.Phase())
	}
	if st := s.State(); !st.Analyzed || st.Transcript != "hello" {
		t.Errorf("unexpected state after transcription: %+v", st)
	}
}

func TestSession_NewUploadResetsState(t *testing.T) {
	s := &Session{ID: "s-1"}
	s.SetUpload(&Upload{Data: []byte("first"), MediaType: "wav"})
	s.SetTranscript("old transcript")
	s.SetAnalysis(`{"Class":"Booked"}`)
	s.SetAnswer("old answer")

	s.SetUpload(&Upload{Data: []byte("second"), MediaType: "mp3"})

	st := s.State()
	if st.Transcript != "" || st.Analysis != "" || st.Analyzed {
		t.Errorf("expected state cleared on new upload, got %+v", st)
	}
	if s.Answer() != "" {
		t.Error("expected answer cleared on new upload")
	}
	if s.Phase() != PhaseUploaded {
		t.Errorf("expected phase UPLOADED, got %s", s.Phase())
	}
	if string(s.Upload().Data) != "second" {
		t.Error("expected new upload bytes retained")
	}
}

func TestSession_FlashIsOneShot(t *testing.T) {
	s := &Session{ID: "s-1"}
	s.SetFlash("success", "File uploaded")

	f := s.TakeFlash()
	if f == nil || f.Kind != "success" || f.Text != "File uploaded" {
		t.Fatalf("unexpected flash: %+v", f)
	}
	if s.TakeFlash() != nil {
		t.Error("expected flash to be cleared after take")
	}
}

func TestManager_CreatesAndReusesSessions(t *testing.T) {
	m := NewManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s1 := m.Get(w, r)
	if s1 == nil || s1.ID == "" {
		t.Fatal("expected a new session")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected a session cookie, got %d", len(cookies))
	}

	// Second request carrying the cookie gets the same session.
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	s2 := m.Get(httptest.NewRecorder(), r2)
	if s2 != s1 {
		t.Error("expected the same session for the same cookie")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", m.Len())
	}
}

func TestManager_IsolatesSessions(t *testing.T) {
	m := NewManager()

	s1 := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s2 := m.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if s1 == s2 {
		t.Fatal("expected distinct sessions for distinct clients")
	}

	s1.SetTranscript("only in s1")
	if s2.State().Transcript != "" {
		t.Error("state leaked across sessions")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 live sessions, got %d", m.Len())
	}
}

func TestManager_UnknownCookieGetsFreshSession(t *testing.T) {
	m := NewManager()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "call_analysis_session", Value: "stale-id"})

	s := m.Get(httptest.NewRecorder(), r)
	if s == nil || s.ID == "stale-id" {
		t.Error("expected a fresh session for an unknown cookie")
	}
}
