package audio

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGenerateChime_Length(t *testing.T) {
	samples := GenerateChime(DefaultChimeConfig())

	// 100ms at 8kHz
	if len(samples) != 800 {
		t.Errorf("Expected 800 samples, got %d", len(samples))
	}
}

func TestGenerateChime_Decays(t *testing.T) {
	samples := GenerateChime(DefaultChimeConfig())

	head := CalculateRMS(samples[:100])
	tail := CalculateRMS(samples[len(samples)-100:])
	if tail >= head {
		t.Errorf("Expected tone to decay, head RMS %f, tail RMS %f", head, tail)
	}

	// Peak should stay near StartGain of full scale
	var peak int16
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	if peak > 3300 || peak < 2500 {
		t.Errorf("Expected peak around 0.1 of full scale, got %d", peak)
	}
}

func TestGenerateChime_ZeroDuration(t *testing.T) {
	config := DefaultChimeConfig()
	config.Duration = 0

	if samples := GenerateChime(config); samples != nil {
		t.Errorf("Expected no samples, got %d", len(samples))
	}
}

func TestEncodePCM16LE(t *testing.T) {
	got := EncodePCM16LE([]int16{1, -1, 0x1234})
	expected := []byte{0x01, 0x00, 0xff, 0xff, 0x34, 0x12}

	if !bytes.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestCalculateRMS(t *testing.T) {
	if rms := CalculateRMS(nil); rms != 0 {
		t.Errorf("Expected RMS 0 for empty input, got %f", rms)
	}

	samples := []int16{100, -100, 100, -100}
	if rms := CalculateRMS(samples); rms != 100 {
		t.Errorf("Expected RMS 100, got %f", rms)
	}
}

func TestBell_Alert(t *testing.T) {
	var buf bytes.Buffer
	NewBell(&buf).Alert()

	if buf.String() != "\a" {
		t.Errorf("Expected BEL, got %q", buf.String())
	}
}

func TestChimeWriter_Alert(t *testing.T) {
	var buf bytes.Buffer
	config := &ChimeConfig{SampleRate: 1000, Frequency: 100, Duration: 10 * time.Millisecond, StartGain: 0.5, EndGain: 0.1}
	w := NewChimeWriter(&buf, config, zerolog.New(io.Discard))

	w.Alert()
	w.Alert()

	// 10 samples, 2 bytes each, written twice
	if buf.Len() != 40 {
		t.Errorf("Expected 40 bytes, got %d", buf.Len())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestChimeWriter_WriteFailureIsSwallowed(t *testing.T) {
	w := NewChimeWriter(failingWriter{}, nil, zerolog.New(io.Discard))

	// Must not panic
	w.Alert()
}
