package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lexiqai/meeting-assistant/internal/archive"
	"github.com/lexiqai/meeting-assistant/internal/assistant"
	"github.com/lexiqai/meeting-assistant/internal/audio"
	"github.com/lexiqai/meeting-assistant/internal/config"
	"github.com/lexiqai/meeting-assistant/internal/meetings"
	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/panel"
	"github.com/lexiqai/meeting-assistant/internal/resilience"
	"github.com/lexiqai/meeting-assistant/internal/suggestions"
	"github.com/lexiqai/meeting-assistant/internal/transport"
)

func NewRunCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the AI agent and stream suggestions until interrupted",
		Long:  "Start the backend AI agent for the meeting, connect to the suggestion channel and print suggestions and transcripts as they arrive.\nCtrl+C disconnects and stops the agent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := requireMeeting(deps)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cmd.OutOrStdout(), deps.Config, meetingID, deps.Logger)
		},
	}

	cmd.Flags().BoolVar(&deps.Config.Muted, "mute", deps.Config.Muted, "Do not play an alert for new suggestions")
	cmd.Flags().StringVar(&deps.Config.PanelAddr, "panel", deps.Config.PanelAddr, "Serve the local panel API on this address")
	cmd.Flags().StringVar(&deps.Config.ArchivePath, "archive", deps.Config.ArchivePath, "Archive delivered events to this SQLite file")

	return cmd
}

func runSession(ctx context.Context, out io.Writer, cfg *config.Config, meetingID string, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger = logger.With().Str("meeting_id", meetingID).Logger()
	formatter := panel.NewFormatter(out)

	alerter, closeAlerter, err := newAlerter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAlerter()

	channel := suggestions.New(suggestions.Session{MeetingID: meetingID}, suggestions.Options{
		Dialer: transport.NewWebSocketDialer(cfg.SuggestionsWSURL, cfg.WSHandshakeTimeout),
		Policy: &resilience.ReconnectPolicy{
			MaxAttempts: cfg.ReconnectMaxAttempts,
			Backoff:     cfg.ReconnectDelay,
			Multiplier:  cfg.ReconnectMultiplier,
			MaxBackoff:  cfg.ReconnectMaxDelay,
		},
		Alerter: alerter,
		Muted:   cfg.Muted,
		Logger:  &logger,
	})

	var recorder assistant.Recorder
	if cfg.ArchivePath != "" {
		store, err := archive.New(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
		logger.Info().Str("path", cfg.ArchivePath).Msg("Archiving events")
	}

	client := meetings.NewClient(cfg, logger)

	panelErr := make(chan error, 1)
	if cfg.PanelAddr != "" {
		server := panel.NewServer(channel, panel.ServerOptions{
			Formatter: formatter,
			Checks:    map[string]observability.HealthCheckFunc{"meetings_api": client.HealthCheck},
			Metrics:   cfg.MetricsEnabled,
			Logger:    logger,
		})
		go func() { panelErr <- server.ListenAndServe(ctx, cfg.PanelAddr) }()
	} else {
		close(panelErr)
	}

	logger.Info().
		Str("suggestions_url", cfg.SuggestionsWSURL).
		Str("api_base_url", cfg.APIBaseURL).
		Str("alert_mode", cfg.AlertMode).
		Bool("muted", cfg.Muted).
		Msg("Meeting assistant starting")
	formatter.Info(fmt.Sprintf("Starting AI assistant for meeting %s (Ctrl+C to stop)", meetingID))

	if err := assistant.New(client, channel, formatter, recorder, logger).Run(ctx); err != nil {
		formatter.Warning("AI assistant did not start; no suggestions will be shown")
		stop()
		<-panelErr
		return err
	}

	if err := <-panelErr; err != nil {
		logger.Warn().Err(err).Msg("Panel API exited with error")
	}
	formatter.Success("Meeting assistant stopped")
	return nil
}

// newAlerter builds the alert side effect. The returned func releases any
// output it opened.
func newAlerter(cfg *config.Config, logger zerolog.Logger) (suggestions.Alerter, func(), error) {
	switch cfg.AlertMode {
	case "chime":
		// PCM never goes to stdout, which carries the rendered panel
		if cfg.AlertOutput == "" {
			return nil, nil, fmt.Errorf("ALERT_OUTPUT is required when ALERT_MODE is chime")
		}
		f, err := os.OpenFile(cfg.AlertOutput, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open alert output: %w", err)
		}
		return audio.NewChimeWriter(f, audio.DefaultChimeConfig(), logger), func() { f.Close() }, nil
	case "none":
		return audio.Noop{}, func() {}, nil
	default:
		return audio.NewBell(os.Stdout), func() {}, nil
	}
}
