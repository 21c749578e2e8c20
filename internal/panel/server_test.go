package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

type fakeSource struct {
	mu          sync.Mutex
	status      suggestions.Status
	muted       bool
	suggestions []suggestions.Suggestion
	transcripts []suggestions.Transcript
	cleared     int
}

func (f *fakeSource) Session() suggestions.Session {
	return suggestions.Session{MeetingID: "meet-1"}
}

func (f *fakeSource) Status() suggestions.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeSource) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *fakeSource) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
}

func (f *fakeSource) Suggestions() []suggestions.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]suggestions.Suggestion(nil), f.suggestions...)
}

func (f *fakeSource) Transcripts() []suggestions.Transcript {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]suggestions.Transcript(nil), f.transcripts...)
}

func (f *fakeSource) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = nil
	f.transcripts = nil
	f.cleared++
}

func newTestServer(source *fakeSource) *Server {
	return NewServer(source, ServerOptions{Metrics: true, Logger: zerolog.New(io.Discard)})
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Status(t *testing.T) {
	source := &fakeSource{
		status:      suggestions.Status{State: suggestions.Connected},
		suggestions: []suggestions.Suggestion{{Text: "a"}, {Text: "b"}},
		transcripts: []suggestions.Transcript{{Text: "c"}},
	}
	rec := do(t, newTestServer(source), http.MethodGet, "/api/status")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.MeetingID != "meet-1" {
		t.Errorf("Expected meeting 'meet-1', got '%s'", resp.MeetingID)
	}
	if resp.State != "connected" || resp.Label != "Live" {
		t.Errorf("Expected connected/Live, got %s/%s", resp.State, resp.Label)
	}
	if resp.SuggestionCount != 2 || resp.TranscriptCount != 1 {
		t.Errorf("Expected counts 2/1, got %d/%d", resp.SuggestionCount, resp.TranscriptCount)
	}
}

func TestServer_Lists(t *testing.T) {
	source := &fakeSource{
		suggestions: []suggestions.Suggestion{{Text: "first"}, {Text: "second"}},
	}
	s := newTestServer(source)

	rec := do(t, s, http.MethodGet, "/api/suggestions")
	var got []suggestions.Suggestion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode suggestions: %v", err)
	}
	if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("Expected suggestions in arrival order, got %+v", got)
	}

	rec = do(t, s, http.MethodGet, "/api/transcripts")
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestServer_Clear(t *testing.T) {
	source := &fakeSource{suggestions: []suggestions.Suggestion{{Text: "x"}}}
	var out bytes.Buffer
	s := NewServer(source, ServerOptions{Formatter: NewFormatter(&out), Logger: zerolog.New(io.Discard)})
	rec := do(t, s, http.MethodPost, "/api/clear")

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if source.cleared != 1 || len(source.Suggestions()) != 0 {
		t.Error("Expected logs to be cleared")
	}
	if !strings.Contains(out.String(), "cleared") {
		t.Errorf("Expected clear to be echoed to the terminal, got %q", out.String())
	}
}

func TestServer_Mute(t *testing.T) {
	source := &fakeSource{}
	s := newTestServer(source)

	do(t, s, http.MethodPost, "/api/mute")
	if !source.Muted() {
		t.Error("Expected muted after POST")
	}

	do(t, s, http.MethodDelete, "/api/mute")
	if source.Muted() {
		t.Error("Expected unmuted after DELETE")
	}
}

func TestServer_Ready(t *testing.T) {
	source := &fakeSource{status: suggestions.Status{State: suggestions.Connecting}}
	s := newTestServer(source)

	if rec := do(t, s, http.MethodGet, "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 while connecting, got %d", rec.Code)
	}

	source.mu.Lock()
	source.status = suggestions.Status{State: suggestions.Connected}
	source.mu.Unlock()

	if rec := do(t, s, http.MethodGet, "/ready"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 when connected, got %d", rec.Code)
	}
}

func TestServer_ReadyIncludesExtraChecks(t *testing.T) {
	source := &fakeSource{status: suggestions.Status{State: suggestions.Connected}}
	s := NewServer(source, ServerOptions{
		Checks: map[string]observability.HealthCheckFunc{
			"meetings_api": func(ctx context.Context) (bool, error) {
				return false, errors.New("circuit breaker is open")
			},
		},
		Logger: zerolog.New(io.Discard),
	})

	rec := do(t, s, http.MethodGet, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 when a check fails, got %d", rec.Code)
	}

	var status observability.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode readiness: %v", err)
	}
	if status.Dependencies["meetings_api"].Status != "unhealthy" {
		t.Errorf("Expected meetings_api unhealthy, got %+v", status.Dependencies["meetings_api"])
	}
	if status.Dependencies["suggestion_channel"].Status != "healthy" {
		t.Errorf("Expected suggestion_channel healthy, got %+v", status.Dependencies["suggestion_channel"])
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer(&fakeSource{})

	if rec := do(t, s, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Errorf("Expected health 200, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("Expected metrics 200, got %d", rec.Code)
	}

	noMetrics := NewServer(&fakeSource{}, ServerOptions{Logger: zerolog.New(io.Discard)})
	if rec := do(t, noMetrics, http.MethodGet, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with metrics disabled, got %d", rec.Code)
	}
}
