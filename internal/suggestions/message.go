package suggestions

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire message types
const (
	TypeSuggestion = "ai_suggestion"
	TypeTranscript = "transcript"
	TypePing       = "ping"
)

// Event is one classified inbound message: a Suggestion or a Transcript
type Event interface {
	EventType() string
}

// Suggestion is an AI-generated recommendation tied to a trigger utterance
type Suggestion struct {
	Timestamp   string  `json:"timestamp"`
	Speaker     string  `json:"speaker"`
	TriggerText string  `json:"trigger_text"`
	Text        string  `json:"suggestion"`
	Confidence  float64 `json:"confidence"`
}

// EventType implements Event
func (Suggestion) EventType() string { return TypeSuggestion }

// Time parses the suggestion timestamp
func (s Suggestion) Time() (time.Time, error) { return ParseTimestamp(s.Timestamp) }

// Transcript is a speech-to-text fragment attributed to a speaker
type Transcript struct {
	Timestamp  string   `json:"timestamp"`
	Speaker    string   `json:"speaker"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// EventType implements Event
func (Transcript) EventType() string { return TypeTranscript }

// Time parses the transcript timestamp
func (t Transcript) Time() (time.Time, error) { return ParseTimestamp(t.Timestamp) }

// Ping is the liveness probe sent once per successful open
type Ping struct {
	Type string `json:"type"`
}

// NewPing returns the liveness probe message
func NewPing() Ping {
	return Ping{Type: TypePing}
}

type envelope struct {
	Type string `json:"type"`
}

// Decode classifies a raw payload. Anything that is not a well-formed
// suggestion or transcript yields an error wrapping ErrMalformedMessage.
func Decode(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeSuggestion:
		var s Suggestion
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, env.Type, err)
		}
		if !validConfidence(s.Confidence) {
			return nil, fmt.Errorf("%w: %s: confidence %v out of range", ErrMalformedMessage, env.Type, s.Confidence)
		}
		return s, nil

	case TypeTranscript:
		var tr Transcript
		if err := json.Unmarshal(payload, &tr); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, env.Type, err)
		}
		if tr.Confidence != nil && !validConfidence(*tr.Confidence) {
			return nil, fmt.Errorf("%w: %s: confidence %v out of range", ErrMalformedMessage, env.Type, *tr.Confidence)
		}
		return tr, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, env.Type)
	}
}

func validConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp. Timestamps without a zone
// are taken as UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", ts)
}
