package suggestions

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecode_Suggestion(t *testing.T) {
	payload := []byte(`{"type":"ai_suggestion","timestamp":"2024-05-01T10:00:00Z","speaker":"Alice",
		"trigger_text":"What does pricing look like?","suggestion":"Share the tiered plan","confidence":0.92}`)

	event, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	s, ok := event.(Suggestion)
	if !ok {
		t.Fatalf("Expected Suggestion, got %T", event)
	}
	if s.Speaker != "Alice" {
		t.Errorf("Expected speaker 'Alice', got '%s'", s.Speaker)
	}
	if s.TriggerText != "What does pricing look like?" {
		t.Errorf("Expected trigger text, got '%s'", s.TriggerText)
	}
	if s.Text != "Share the tiered plan" {
		t.Errorf("Expected suggestion text, got '%s'", s.Text)
	}
	if s.Confidence != 0.92 {
		t.Errorf("Expected confidence 0.92, got %f", s.Confidence)
	}
}

func TestDecode_Transcript(t *testing.T) {
	event, err := Decode([]byte(`{"type":"transcript","timestamp":"2024-05-01T10:00:01Z","speaker":"Bob","text":"hello"}`))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	tr, ok := event.(Transcript)
	if !ok {
		t.Fatalf("Expected Transcript, got %T", event)
	}
	if tr.Text != "hello" {
		t.Errorf("Expected text 'hello', got '%s'", tr.Text)
	}
	if tr.Confidence != nil {
		t.Errorf("Expected no confidence, got %v", *tr.Confidence)
	}
}

func TestDecode_TranscriptWithConfidence(t *testing.T) {
	event, err := Decode([]byte(`{"type":"transcript","speaker":"Bob","text":"hi","confidence":0.8}`))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	tr := event.(Transcript)
	if tr.Confidence == nil || *tr.Confidence != 0.8 {
		t.Errorf("Expected confidence 0.8, got %v", tr.Confidence)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `hello there`},
		{"truncated", `{"type":"ai_suggestion"`},
		{"array", `[1,2,3]`},
		{"unknown type", `{"type":"participant_joined","name":"Carol"}`},
		{"missing type", `{"text":"hi"}`},
		{"ping echo", `{"type":"ping"}`},
		{"wrong field type", `{"type":"ai_suggestion","confidence":"high"}`},
		{"confidence above range", `{"type":"ai_suggestion","confidence":1.5}`},
		{"negative transcript confidence", `{"type":"transcript","text":"x","confidence":-0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := Decode([]byte(tt.payload))
			if err == nil {
				t.Fatalf("Expected error, got event %#v", event)
			}
			if !errors.Is(err, ErrMalformedMessage) {
				t.Errorf("Expected ErrMalformedMessage, got %v", err)
			}
		})
	}
}

func TestNewPing(t *testing.T) {
	data, err := json.Marshal(NewPing())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"type":"ping"}` {
		t.Errorf("Expected {\"type\":\"ping\"}, got %s", data)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00+02:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00.250000", time.Date(2024, 5, 1, 10, 0, 0, 250000000, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.expected) {
			t.Errorf("ParseTimestamp(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("Expected error for invalid timestamp")
	}
}
