// Package panel renders the suggestion channel for the host, on the
// terminal and over a small local HTTP API.
package panel

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

const triggerPreviewLen = 30

type Formatter struct {
	mu  sync.Mutex
	w   io.Writer
	loc *time.Location
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w, loc: time.Local}
}

// WithLocation sets the zone timestamps are shown in
func (f *Formatter) WithLocation(loc *time.Location) *Formatter {
	f.loc = loc
	return f
}

func (f *Formatter) Suggestion(s suggestions.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "💡 %s\n", s.Text)
	fmt.Fprintf(f.w, "   Triggered by: %q  %d%%  %s\n", TriggerPreview(s.TriggerText)+"...", Percent(s.Confidence), f.clock(s.Timestamp))
}

func (f *Formatter) Transcript(t suggestions.Transcript) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "🎙️  %s  %s\n", t.Speaker, f.clock(t.Timestamp))
	fmt.Fprintf(f.w, "   %s\n", t.Text)
	if t.Confidence != nil && *t.Confidence != 0 {
		fmt.Fprintf(f.w, "   %d%% confidence\n", Percent(*t.Confidence))
	}
}

// Event renders either kind of event
func (f *Formatter) Event(e suggestions.Event) {
	switch ev := e.(type) {
	case suggestions.Suggestion:
		f.Suggestion(ev)
	case suggestions.Transcript:
		f.Transcript(ev)
	}
}

func (f *Formatter) Status(status suggestions.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case status.State == suggestions.Connected:
		fmt.Fprintf(f.w, "🟢 Live\n")
	case status.State == suggestions.Disabled:
		fmt.Fprintf(f.w, "⏹️  AI assistant stopped\n")
	case status.State == suggestions.Disconnected && !status.PendingRetry:
		fmt.Fprintf(f.w, "❌ Lost connection to AI assistant after %d attempts\n", status.Failures)
	default:
		fmt.Fprintf(f.w, "⏳ %s\n", StatusLabel(status.State))
	}
}

func (f *Formatter) Cleared() {
	f.Info("Suggestions and transcripts cleared")
}

func (f *Formatter) HistoryHeader(meetingID string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "📁 Meeting %s: %d events\n\n", meetingID, count)
}

func (f *Formatter) Error(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) clock(ts string) string {
	t, err := suggestions.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.In(f.loc).Format("15:04:05")
}

// StatusLabel is the short connection label shown to the host
func StatusLabel(s suggestions.State) string {
	if s == suggestions.Connected {
		return "Live"
	}
	return "Connecting to AI assistant..."
}

// TriggerPreview returns at most the first 30 characters of a trigger
func TriggerPreview(trigger string) string {
	r := []rune(trigger)
	if len(r) > triggerPreviewLen {
		r = r[:triggerPreviewLen]
	}
	return string(r)
}

// Percent converts a confidence in [0,1] to a whole percentage
func Percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
