// Package assistant runs one host session: it starts the backend AI agent,
// keeps the suggestion channel enabled while the session lasts and stops
// the agent again on the way out.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

const stopTimeout = 10 * time.Second

// AIController starts and stops the backend AI agent for a meeting
type AIController interface {
	StartAI(ctx context.Context, meetingID string) error
	StopAI(ctx context.Context, meetingID string) error
}

// Channel is the part of suggestions.Channel a session drives
type Channel interface {
	Session() suggestions.Session
	Enable()
	Disable()
	OnEvent(handler suggestions.Handler)
	Status() suggestions.Status
	StatusUpdates() <-chan suggestions.Status
}

// View renders the session for the host
type View interface {
	Event(e suggestions.Event)
	Status(status suggestions.Status)
}

// Recorder persists delivered events
type Recorder interface {
	Record(ctx context.Context, meetingID string, event suggestions.Event) error
}

// Assistant wires the channel to its collaborators
type Assistant struct {
	ai       AIController
	channel  Channel
	view     View
	recorder Recorder
	logger   zerolog.Logger
}

// New creates an assistant. recorder may be nil.
func New(ai AIController, channel Channel, view View, recorder Recorder, logger zerolog.Logger) *Assistant {
	return &Assistant{
		ai:       ai,
		channel:  channel,
		view:     view,
		recorder: recorder,
		logger:   logger.With().Str("meeting_id", channel.Session().MeetingID).Logger(),
	}
}

// Run blocks until ctx is done. The channel is only enabled once the
// backend has accepted start-ai.
func (a *Assistant) Run(ctx context.Context) error {
	meetingID := a.channel.Session().MeetingID

	if err := a.ai.StartAI(ctx, meetingID); err != nil {
		return fmt.Errorf("failed to start AI agent: %w", err)
	}
	a.logger.Info().Msg("AI agent started")

	a.channel.OnEvent(a.handleEvent)
	a.channel.Enable()

	updates := a.channel.StatusUpdates()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case status := <-updates:
			a.view.Status(status)
		}
	}

	a.channel.Disable()
	a.view.Status(a.channel.Status())

	// Stop is best effort; the session is over either way
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := a.ai.StopAI(stopCtx, meetingID); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to stop AI agent")
	} else {
		a.logger.Info().Msg("AI agent stopped")
	}
	return nil
}

func (a *Assistant) handleEvent(e suggestions.Event) {
	a.view.Event(e)

	if a.recorder == nil {
		return
	}
	if err := a.recorder.Record(context.Background(), a.channel.Session().MeetingID, e); err != nil {
		a.logger.Error().Err(err).Str("kind", e.EventType()).Msg("Failed to archive event")
	}
}
