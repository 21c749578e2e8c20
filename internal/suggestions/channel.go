// Package suggestions implements the reconnecting channel that carries AI
// suggestions and live transcripts for one meeting to the host.
package suggestions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/resilience"
)

// Session identifies the meeting a channel is scoped to
type Session struct {
	MeetingID string
}

// Conn is one bidirectional message stream
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a Conn for a meeting
type Dialer interface {
	Dial(ctx context.Context, meetingID string) (Conn, error)
}

// Alerter plays the audible cue for a new suggestion
type Alerter interface {
	Alert()
}

// Handler receives classified events in arrival order
type Handler func(Event)

// Options configures a Channel. Dialer is required.
type Options struct {
	Dialer  Dialer
	Policy  *resilience.ReconnectPolicy
	Alerter Alerter
	Muted   bool
	Logger  *zerolog.Logger
	Metrics *observability.ChannelMetrics
}

// Channel owns the connection lifecycle for one meeting and classifies
// inbound messages into the suggestion and transcript logs.
//
// Every connection attempt gets a new generation number. Callbacks carrying
// an older generation are stale and are discarded, which is how Disable
// wins over a dial or read that completes afterwards.
type Channel struct {
	session Session
	dialer  Dialer
	policy  *resilience.ReconnectPolicy
	alerter Alerter
	logger  zerolog.Logger
	metrics *observability.ChannelMetrics
	updates chan Status

	mu           sync.Mutex
	state        State
	generation   uint64
	failures     int
	pendingRetry bool
	conn         Conn
	cancel       context.CancelFunc
	retryTimer   *time.Timer
	handler      Handler
	muted        bool
	suggestions  []Suggestion
	transcripts  []Transcript
}

// New creates a disabled channel for the session
func New(session Session, opts Options) *Channel {
	if opts.Policy == nil {
		opts.Policy = resilience.DefaultReconnectPolicy()
	}
	logger := observability.WithMeeting(session.MeetingID)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewChannelMetrics(session.MeetingID)
	}

	return &Channel{
		session: session,
		dialer:  opts.Dialer,
		policy:  opts.Policy,
		alerter: opts.Alerter,
		logger:  logger.With().Str("component", "suggestion_channel").Logger(),
		metrics: opts.Metrics,
		updates: make(chan Status, 16),
		state:   Disabled,
		muted:   opts.Muted,
	}
}

// Session returns the meeting this channel is scoped to
func (c *Channel) Session() Session {
	return c.session
}

// Enable starts connecting. It is a no-op if the channel is already enabled.
func (c *Channel) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Disabled {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.failures = 0
	c.logger.Info().Msg("Suggestion channel enabled")
	c.connectLocked(ctx)
}

// Disable closes any open connection, cancels pending dials and reconnect
// timers and returns to Disabled. Idempotent.
func (c *Channel) Disable() {
	c.mu.Lock()
	if c.state == Disabled {
		c.mu.Unlock()
		return
	}

	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.failures = 0
	c.pendingRetry = false
	c.setStateLocked(Disabled)
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Error closing connection")
		}
	}
	c.logger.Info().Msg("Suggestion channel disabled")
}

// OnEvent registers the consumer callback, replacing any previous one. The
// handler runs on the connection's read goroutine; it may call back into the
// channel.
func (c *Channel) OnEvent(handler Handler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Clear empties both logs without touching the connection
func (c *Channel) Clear() {
	c.mu.Lock()
	c.suggestions = nil
	c.transcripts = nil
	c.mu.Unlock()
}

// SetMuted toggles the audible alert. Delivery and logging are unaffected.
func (c *Channel) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.mu.Unlock()
}

// Muted reports whether alerts are suppressed
func (c *Channel) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// State returns the current connection state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current state with retry details
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// StatusUpdates delivers a Status on every state transition. Updates are
// dropped when the consumer falls behind; Status is always authoritative.
func (c *Channel) StatusUpdates() <-chan Status {
	return c.updates
}

// Suggestions returns a copy of the suggestion log in arrival order
func (c *Channel) Suggestions() []Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Suggestion(nil), c.suggestions...)
}

// Transcripts returns a copy of the transcript log in arrival order
func (c *Channel) Transcripts() []Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transcript(nil), c.transcripts...)
}

// connectLocked starts a new attempt. Must be called with c.mu held.
func (c *Channel) connectLocked(ctx context.Context) {
	c.generation++
	gen := c.generation
	c.pendingRetry = false
	c.setStateLocked(Connecting)

	go c.dial(ctx, gen)
}

func (c *Channel) dial(ctx context.Context, gen uint64) {
	conn, err := c.dialer.Dial(ctx, c.session.MeetingID)
	if err != nil {
		c.openFailed(gen, fmt.Errorf("%w: %v", ErrTransportOpen, err))
		return
	}
	if !c.opened(gen, conn) {
		return
	}

	if err := conn.WriteJSON(NewPing()); err != nil {
		c.connectionLost(gen, fmt.Errorf("%w: ping: %v", ErrTransportRuntime, err))
		return
	}
	c.readLoop(gen, conn)
}

// opened handles Connecting --open ok--> Connected. A stale connection is
// closed and reported as not live.
func (c *Channel) opened(gen uint64, conn Conn) bool {
	c.mu.Lock()
	if gen != c.generation || c.state != Connecting {
		c.mu.Unlock()
		c.metrics.RecordConnectAttempt("stale")
		c.logger.Debug().Msg("Discarding connection that opened after the attempt was abandoned")
		conn.Close()
		return false
	}

	c.conn = conn
	c.failures = 0
	c.setStateLocked(Connected)
	c.mu.Unlock()

	c.metrics.RecordConnectAttempt("success")
	c.logger.Info().Msg("Suggestion channel connected")
	return true
}

// openFailed handles Connecting --open fails--> Disconnected
func (c *Channel) openFailed(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != Connecting {
		return
	}

	c.metrics.RecordConnectAttempt("error")
	c.failures++
	c.logger.Warn().Err(err).Int("consecutive_failures", c.failures).Msg("Suggestion channel connection failed")
	c.setStateLocked(Disconnected)
	c.scheduleRetryLocked()
}

// connectionLost handles Connected --close or error--> Disconnected
func (c *Channel) connectionLost(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation || c.state != Connected {
		c.mu.Unlock()
		return
	}

	if !errors.Is(err, ErrTransportRuntime) {
		err = fmt.Errorf("%w: %v", ErrTransportRuntime, err)
	}
	c.logger.Warn().Err(err).Msg("Suggestion channel disconnected")

	conn := c.conn
	c.conn = nil
	c.setStateLocked(Disconnected)
	c.scheduleRetryLocked()
	c.mu.Unlock()

	// Close may block on a close frame to a dead peer
	if conn != nil {
		conn.Close()
	}
}

// scheduleRetryLocked arms the reconnect timer unless the policy is exhausted
func (c *Channel) scheduleRetryLocked() {
	if c.policy.Exhausted(c.failures) {
		c.pendingRetry = false
		c.logger.Error().Int("consecutive_failures", c.failures).Msg("Giving up on suggestion channel until re-enabled")
		c.publishLocked()
		return
	}

	// The first retry after a failure waits the base delay
	delay := c.policy.Delay(max(c.failures-1, 0))
	gen := c.generation
	c.pendingRetry = true
	c.retryTimer = time.AfterFunc(delay, func() { c.retry(gen) })
	c.metrics.RecordReconnectScheduled()
	c.logger.Info().Dur("delay", delay).Msg("Reconnect scheduled")
	c.publishLocked()
}

// retry handles Disconnected --after delay--> Connecting
func (c *Channel) retry(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.state != Disconnected || !c.pendingRetry {
		return
	}

	c.retryTimer = nil
	ctx, cancel := context.WithCancel(context.Background())
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.connectLocked(ctx)
}

func (c *Channel) readLoop(gen uint64, conn Conn) {
	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			c.connectionLost(gen, err)
			return
		}
		if !c.receive(gen, payload) {
			return
		}
	}
}

// receive classifies one payload and delivers it. It returns false once the
// connection is no longer the live one.
func (c *Channel) receive(gen uint64, payload []byte) bool {
	event, decodeErr := Decode(payload)

	c.mu.Lock()
	if gen != c.generation || c.state != Connected {
		c.mu.Unlock()
		return false
	}
	if decodeErr != nil {
		c.mu.Unlock()
		c.metrics.RecordMessage("malformed")
		c.logger.Debug().Err(decodeErr).Int("bytes", len(payload)).Msg("Dropping message")
		return true
	}

	alert := false
	switch e := event.(type) {
	case Suggestion:
		c.suggestions = append(c.suggestions, e)
		alert = !c.muted && c.alerter != nil
	case Transcript:
		c.transcripts = append(c.transcripts, e)
	}
	handler := c.handler
	c.mu.Unlock()

	c.metrics.RecordMessage(kindLabel(event))
	if alert {
		c.alerter.Alert()
		c.metrics.RecordAlert()
	}
	if handler != nil {
		handler(event)
	}
	return true
}

func kindLabel(e Event) string {
	if e.EventType() == TypeSuggestion {
		return "suggestion"
	}
	return "transcript"
}

// setStateLocked must be called with c.mu held
func (c *Channel) setStateLocked(s State) {
	if c.state != s {
		c.logger.Debug().Str("from", c.state.String()).Str("to", s.String()).Msg("Channel state transition")
	}
	c.state = s
	c.metrics.SetState(int(s))
	if s != Disconnected {
		c.publishLocked()
	}
}

// publishLocked must be called with c.mu held. Disconnected is published by
// scheduleRetryLocked once PendingRetry is known.
func (c *Channel) publishLocked() {
	select {
	case c.updates <- c.statusLocked():
	default:
	}
}

func (c *Channel) statusLocked() Status {
	return Status{State: c.state, PendingRetry: c.pendingRetry, Failures: c.failures}
}
