package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// ChimeConfig describes the notification tone played for a new suggestion
type ChimeConfig struct {
	SampleRate int           // Samples per second
	Frequency  float64       // Tone frequency in Hz
	Duration   time.Duration // Tone length
	StartGain  float64       // Gain at the start of the tone (0..1)
	EndGain    float64       // Gain at the end of the tone, reached exponentially
}

// DefaultChimeConfig returns a short, subtle 800Hz tone
func DefaultChimeConfig() *ChimeConfig {
	return &ChimeConfig{
		SampleRate: 8000,
		Frequency:  800,
		Duration:   100 * time.Millisecond,
		StartGain:  0.1,
		EndGain:    0.01,
	}
}

// GenerateChime synthesizes the tone as 16-bit signed samples
func GenerateChime(config *ChimeConfig) []int16 {
	if config == nil {
		config = DefaultChimeConfig()
	}

	n := int(float64(config.SampleRate) * config.Duration.Seconds())
	if n <= 0 {
		return nil
	}
	samples := make([]int16, n)

	// Exponential ramp from StartGain to EndGain over the whole tone
	decay := 0.0
	if config.StartGain > 0 && config.EndGain > 0 && n > 1 {
		decay = math.Log(config.EndGain/config.StartGain) / float64(n-1)
	}

	for i := range samples {
		t := float64(i) / float64(config.SampleRate)
		gain := config.StartGain * math.Exp(decay*float64(i))
		v := gain * math.Sin(2*math.Pi*config.Frequency*t)
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

// EncodePCM16LE encodes samples as little-endian 16-bit PCM
func EncodePCM16LE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	return math.Sqrt(sum / float64(len(samples)))
}
