package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lexiqai/meeting-assistant/internal/config"
	"github.com/lexiqai/meeting-assistant/internal/observability"
)

type Dependencies struct {
	Config *config.Config
	Logger zerolog.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "assistant",
		Short:         "Live AI suggestions for the meeting host",
		Long:          "Starts the backend AI agent for a meeting and streams its suggestions and transcripts to the terminal while the meeting runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = observability.Version
	rootCmd.PersistentFlags().StringVarP(&deps.Config.MeetingID, "meeting", "m", deps.Config.MeetingID, "Meeting id (defaults to MEETING_ID)")

	rootCmd.AddCommand(NewRunCmd(deps))
	rootCmd.AddCommand(NewStartAICmd(deps))
	rootCmd.AddCommand(NewStopAICmd(deps))
	rootCmd.AddCommand(NewHistoryCmd(deps))

	return rootCmd
}

func requireMeeting(deps *Dependencies) (string, error) {
	if deps.Config.MeetingID == "" {
		return "", fmt.Errorf("meeting id is required (use --meeting or MEETING_ID)")
	}
	return deps.Config.MeetingID, nil
}
