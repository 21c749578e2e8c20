package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

// Source is the view of the suggestion channel the API serves
type Source interface {
	Session() suggestions.Session
	Status() suggestions.Status
	Muted() bool
	SetMuted(muted bool)
	Suggestions() []suggestions.Suggestion
	Transcripts() []suggestions.Transcript
	Clear()
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	MeetingID       string `json:"meeting_id"`
	State           string `json:"state"`
	Label           string `json:"label"`
	PendingRetry    bool   `json:"pending_retry"`
	Failures        int    `json:"consecutive_failures"`
	Muted           bool   `json:"muted"`
	SuggestionCount int    `json:"suggestion_count"`
	TranscriptCount int    `json:"transcript_count"`
}

// ServerOptions configures the panel API
type ServerOptions struct {
	// Formatter, when set, echoes API actions to the terminal
	Formatter *Formatter
	// Checks are extra /ready dependencies next to the suggestion channel
	Checks map[string]observability.HealthCheckFunc
	// Metrics mounts /metrics
	Metrics bool
	Logger  zerolog.Logger
}

type Server struct {
	router    *chi.Mux
	source    Source
	formatter *Formatter
	checks    map[string]observability.HealthCheckFunc
	metrics   bool
	logger    zerolog.Logger
}

// NewServer builds the local panel API
func NewServer(source Source, opts ServerOptions) *Server {
	checks := map[string]observability.HealthCheckFunc{}
	for name, check := range opts.Checks {
		checks[name] = check
	}

	s := &Server{
		router:    chi.NewRouter(),
		source:    source,
		formatter: opts.Formatter,
		checks:    checks,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "panel").Logger(),
	}
	s.checks["suggestion_channel"] = s.channelReady
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", observability.HealthCheckHandler())
	s.router.Get("/ready", observability.ReadinessHandler(s.checks))
	if s.metrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/transcripts", s.handleTranscripts)
		r.Post("/clear", s.handleClear)
		r.Post("/mute", s.handleMute(true))
		r.Delete("/mute", s.handleMute(false))
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Panel API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("panel server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("panel server shutdown: %w", err)
	}
	s.logger.Info().Msg("Panel API stopped")
	return nil
}

func (s *Server) channelReady(ctx context.Context) (bool, error) {
	status := s.source.Status()
	if status.State != suggestions.Connected {
		return false, fmt.Errorf("channel is %s", status.State)
	}
	return true, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.source.Status()
	writeJSON(w, http.StatusOK, StatusResponse{
		MeetingID:       s.source.Session().MeetingID,
		State:           status.State.String(),
		Label:           StatusLabel(status.State),
		PendingRetry:    status.PendingRetry,
		Failures:        status.Failures,
		Muted:           s.source.Muted(),
		SuggestionCount: len(s.source.Suggestions()),
		TranscriptCount: len(s.source.Transcripts()),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	list := s.source.Suggestions()
	if list == nil {
		list = []suggestions.Suggestion{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	list := s.source.Transcripts()
	if list == nil {
		list = []suggestions.Transcript{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.source.Clear()
	s.logger.Info().Msg("Logs cleared via panel API")
	if s.formatter != nil {
		s.formatter.Cleared()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMute(muted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.source.SetMuted(muted)
		writeJSON(w, http.StatusOK, map[string]bool{"muted": muted})
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Panel request")
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
