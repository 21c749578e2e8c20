package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexiqai/meeting-assistant/internal/meetings"
	"github.com/lexiqai/meeting-assistant/internal/panel"
)

func NewStartAICmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "start-ai",
		Short: "Start the backend AI agent without attaching to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := requireMeeting(deps)
			if err != nil {
				return err
			}

			client := meetings.NewClient(deps.Config, deps.Logger)
			if err := client.StartAI(cmd.Context(), meetingID); err != nil {
				return err
			}
			panel.NewFormatter(os.Stdout).Success(fmt.Sprintf("AI agent started for meeting %s", meetingID))
			return nil
		},
	}
}

func NewStopAICmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "stop-ai",
		Short: "Stop the backend AI agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := requireMeeting(deps)
			if err != nil {
				return err
			}

			client := meetings.NewClient(deps.Config, deps.Logger)
			if err := client.StopAI(cmd.Context(), meetingID); err != nil {
				return err
			}
			panel.NewFormatter(os.Stdout).Success(fmt.Sprintf("AI agent stopped for meeting %s", meetingID))
			return nil
		},
	}
}
