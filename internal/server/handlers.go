package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/venture-data/Call-Analysis-Demo/internal/config"
	"github.com/venture-data/Call-Analysis-Demo/internal/events"
	"github.com/venture-data/Call-Analysis-Demo/internal/models"
	"github.com/venture-data/Call-Analysis-Demo/internal/observability/logging"
	"github.com/venture-data/Call-Analysis-Demo/internal/observability/metrics"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/analysis"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
	"github.com/venture-data/Call-Analysis-Demo/internal/session"
)

// Server serves the analysis UI and the JSON analysis endpoint.
type Server struct {
	cfg      *config.Configuration
	analyzer *analysis.Analyzer
	sessions *session.Manager
	events   *events.Publisher
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New creates the HTTP server component.
func New(cfg *config.Configuration, analyzer *analysis.Analyzer, sessions *session.Manager, publisher *events.Publisher, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Server{
		cfg:      cfg,
		analyzer: analyzer,
		sessions: sessions,
		events:   publisher,
		metrics:  m,
		logger:   logging.WithComponent("server"),
	}
}

// handleIndex renders the single-page UI from the session's current state.
// The stored raw analysis is re-parsed on every render.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)
	st := sess.State()
	up := sess.Upload()

	data := pageData{
		ServiceName: s.cfg.Service.Name,
		Flash:       sess.TakeFlash(),
		Analyzed:    st.Analyzed,
		Transcript:  st.Transcript,
		Answer:      sess.Answer(),
	}
	if up != nil {
		data.HasUpload = true
		data.Filename = up.Filename
		data.AudioSrc = audioDataURI(up)
	}
	if st.Analysis != "" {
		data.HasAnalysis = true
		res, err := analysis.ParseAnalysis(st.Analysis)
		if err != nil {
			data.ParseError = "The analysis reply could not be interpreted. Try analysing again."
		} else {
			data.Result = res
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("failed to render index template")
	}
}

// handleUpload accepts a WAV or MP3 file and stores it in the session,
// resetting any previous transcript, analysis and answer.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Service.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Service.MaxUploadBytes); err != nil {
		sess.SetFlash("error", "Upload failed: the file is too large or the form is malformed.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		sess.SetFlash("warning", "Choose an audio file to upload.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	mediaType, ok := mediaTypeOf(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		sess.SetFlash("error", "Unsupported file type. Upload a WAV or MP3 recording.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		sess.SetFlash("error", "Upload failed: could not read the file.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.SetUpload(&session.Upload{
		Data:      data,
		MediaType: mediaType,
		Filename:  header.Filename,
	})
	s.metrics.RecordUpload(mediaType, len(data))
	s.logger.Info().
		Str("session_id", sess.ID).
		Str("filename", header.Filename).
		Str("media_type", mediaType).
		Int("bytes", len(data)).
		Msg("audio uploaded")

	sess.SetFlash("success", "File uploaded.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAnalyze runs the two-step pipeline over the session's upload. The
// steps fail independently: a completion failure still leaves the transcript
// visible, and a failed step never clears previously rendered state.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)
	up := sess.Upload()
	if up == nil {
		sess.SetFlash("warning", "Upload an audio file before analysing.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.STT.Timeout)
	defer cancel()

	log := s.logger.With().Str("session_id", sess.ID).Logger()

	transcript, err := s.analyzer.Transcribe(ctx, up.Data, up.MediaType)
	if err != nil {
		log.Error().Err(err).Msg("transcription failed")
		sess.SetFlash("error", transcribeErrorMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess.SetTranscript(transcript)

	raw, err := s.analyzer.Analyze(ctx, transcript)
	if err != nil {
		log.Error().Err(err).Msg("analysis completion failed")
		sess.SetFlash("error", "The analysis step failed; the transcript is shown below. Try analysing again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess.SetAnalysis(raw)

	res, err := analysis.ParseAnalysis(raw)
	if err != nil {
		s.metrics.RecordParseFailure()
		log.Warn().Err(err).Msg("analysis reply did not match the expected format")
		sess.SetFlash("error", "The analysis reply could not be interpreted. Try analysing again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.metrics.RecordAnalysis(string(res.Class))
	s.publishAnalysis(r.Context(), sess.ID, res)

	log.Info().Str("class", string(res.Class)).Msg("call analysed")
	sess.SetFlash("success", "Analysis completed.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleQuestion answers a free-text question grounded in the session's
// transcript. Questions are only accepted once a transcript exists.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)
	st := sess.State()
	if !st.Analyzed {
		sess.SetFlash("warning", "Analyse a call before asking questions about it.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	question := r.FormValue("question")
	answer, err := s.analyzer.Ask(r.Context(), st.Transcript, question)
	switch {
	case errors.Is(err, analysis.ErrEmptyQuestion):
		s.metrics.RecordQuestion("empty")
		sess.SetFlash("warning", "Please enter a question.")
	case err != nil:
		s.metrics.RecordQuestion("error")
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("question failed")
		sess.SetFlash("error", "The question could not be answered. Try again.")
	default:
		s.metrics.RecordQuestion("success")
		sess.SetAnswer(answer)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// analyzeResponse is the reply of the stateless JSON analysis endpoint.
type analyzeResponse struct {
	Transcript string           `json:"transcript"`
	Analysis   *analysis.Result `json:"analysis,omitempty"`
	Raw        string           `json:"raw,omitempty"`
	DurationMS int64            `json:"durationMs"`
	Error      string           `json:"error,omitempty"`
}

// handleAPIAnalyze runs the full pipeline over a posted file and returns the
// result as JSON. It touches no session state.
func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Service.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Service.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: "malformed multipart request"})
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: "missing audio file field"})
		return
	}
	defer file.Close()

	mediaType, ok := mediaTypeOf(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: "unsupported media type, expected wav or mp3"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{Error: "could not read audio file"})
		return
	}
	s.metrics.RecordUpload(mediaType, len(data))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.STT.Timeout)
	defer cancel()

	resp := analyzeResponse{}
	transcript, err := s.analyzer.Transcribe(ctx, data, mediaType)
	if err != nil {
		resp.Error = fmt.Sprintf("transcription failed: %v", err)
		resp.DurationMS = time.Since(start).Milliseconds()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	resp.Transcript = transcript

	raw, err := s.analyzer.Analyze(ctx, transcript)
	if err != nil {
		resp.Error = fmt.Sprintf("analysis failed: %v", err)
		resp.DurationMS = time.Since(start).Milliseconds()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	resp.Raw = raw

	res, err := analysis.ParseAnalysis(raw)
	if err != nil {
		s.metrics.RecordParseFailure()
		resp.Error = fmt.Sprintf("malformed analysis reply: %v", err)
		resp.DurationMS = time.Since(start).Milliseconds()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	resp.Analysis = res
	resp.DurationMS = time.Since(start).Milliseconds()

	s.metrics.RecordAnalysis(string(res.Class))
	s.publishAnalysis(r.Context(), "api", res)
	writeJSON(w, http.StatusOK, resp)
}

// publishAnalysis emits the completed-analysis event, and the booked trigger
// when the call was classified as Booked. Publish failures are logged and do
// not affect the user-facing outcome.
func (s *Server) publishAnalysis(ctx context.Context, sessionID string, res *analysis.Result) {
	now := time.Now().UnixMilli()
	completed := models.AnalysisCompleted{
		EventType:   models.EventAnalysisCompleted,
		SessionID:   sessionID,
		Timestamp:   now,
		Provider:    s.analyzer.Provider(),
		Model:       s.analyzer.Model(),
		Class:       string(res.Class),
		Explanation: res.Explanation,
		Summary:     res.Summary,
		Entities:    res.Entities,
	}
	if err := s.events.PublishAnalysis(ctx, sessionID, completed); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to publish analysis event")
	}

	if !res.Class.Booked() {
		return
	}
	trigger := models.BookedTrigger{
		EventType:   models.EventBookedTrigger,
		SessionID:   sessionID,
		Timestamp:   now,
		Explanation: res.Explanation,
	}
	if err := s.events.PublishTrigger(ctx, sessionID, trigger); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to publish booked trigger")
	}
}

// mediaTypeOf maps an uploaded file's name and declared content type to a
// supported media subtype. The extension wins; the content type is the
// fallback for files uploaded without one.
func mediaTypeOf(filename, contentType string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return stt.MediaWAV, true
	case ".mp3":
		return stt.MediaMP3, true
	}
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return stt.MediaWAV, true
	case "audio/mpeg", "audio/mp3":
		return stt.MediaMP3, true
	}
	return "", false
}

// audioDataURI inlines the uploaded audio as a data URI so the page can play
// it back without a separate download endpoint.
func audioDataURI(up *session.Upload) template.URL {
	mime := "audio/wav"
	if up.MediaType == stt.MediaMP3 {
		mime = "audio/mpeg"
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(up.Data))
}

// transcribeErrorMessage maps a transcription failure to a user-facing notice.
func transcribeErrorMessage(err error) string {
	var svcErr *stt.ServiceError
	if errors.As(err, &svcErr) {
		return fmt.Sprintf("Transcription via %s failed. Try analysing again.", svcErr.Provider)
	}
	return "Transcription failed. Try analysing again."
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
