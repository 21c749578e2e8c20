package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexiqai/meeting-assistant/internal/archive"
	"github.com/lexiqai/meeting-assistant/internal/panel"
)

func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived suggestions and transcripts for a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingID, err := requireMeeting(deps)
			if err != nil {
				return err
			}
			if deps.Config.ArchivePath == "" {
				return fmt.Errorf("ARCHIVE_PATH is not set")
			}

			store, err := archive.New(deps.Config.ArchivePath)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), meetingID)
			if err != nil {
				return err
			}

			formatter := panel.NewFormatter(os.Stdout)
			if len(entries) == 0 {
				formatter.Info("No archived events for this meeting")
				return nil
			}

			formatter.HistoryHeader(meetingID, len(entries))
			for _, e := range entries {
				formatter.Event(e.Event)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&deps.Config.ArchivePath, "archive", deps.Config.ArchivePath, "Archive database path (defaults to ARCHIVE_PATH)")

	return cmd
}
