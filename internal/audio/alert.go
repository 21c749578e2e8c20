package audio

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Bell rings the terminal bell
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell creates a Bell writing to w (usually os.Stdout)
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Alert writes the BEL control character
func (b *Bell) Alert() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.w.Write([]byte{'\a'})
}

// ChimeWriter writes the chime as raw PCM to a sink such as a FIFO read by
// an audio player
type ChimeWriter struct {
	mu     sync.Mutex
	w      io.Writer
	pcm    []byte
	logger zerolog.Logger
}

// NewChimeWriter pre-renders the chime and returns a writer for it
func NewChimeWriter(w io.Writer, config *ChimeConfig, logger zerolog.Logger) *ChimeWriter {
	return &ChimeWriter{
		w:      w,
		pcm:    EncodePCM16LE(GenerateChime(config)),
		logger: logger,
	}
}

// Alert writes one chime. Write failures are logged, never returned.
func (c *ChimeWriter) Alert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(c.pcm); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to write alert chime")
	}
}

// Noop never makes a sound
type Noop struct{}

// Alert does nothing
func (Noop) Alert() {}
