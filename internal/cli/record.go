package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/zebra/internal/tracker"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <text>",
	Short: "Attach a note to the running session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecord,
}

func init() {
	recordCmd.Flags().String("git", "", "Link a commit or branch URL")
}

func runRecord(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	gitLink, _ := cmd.Flags().GetString("git")

	rec, err := app.Tracker.AddRecord(tracker.RecordInput{
		Text:    strings.Join(args, " "),
		GitLink: gitLink,
	})
	if err != nil {
		if errors.Is(err, tracker.ErrNoTimer) {
			return fmt.Errorf("records attach to a running session; start the timer first")
		}
		return err
	}

	fmt.Printf("Recorded at %s\n", rec.Timestamp.Format("15:04:05"))
	return nil
}
