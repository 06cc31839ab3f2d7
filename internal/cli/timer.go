package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/zebra/internal/tracker"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start (or resume) the timer on the current project",
	RunE:  runStart,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	RunE:  runPause,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and save the session",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show timer and sync status",
	RunE:  runStatus,
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}

func runStart(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tracker.StartTimer(); err != nil {
		if errors.Is(err, tracker.ErrNoProject) {
			return fmt.Errorf("no project to track; create one with 'zebra project add <name>'")
		}
		return err
	}

	if session := app.Tracker.OpenSession(); session != nil {
		if project := app.Tracker.ProjectByID(session.ProjectID); project != nil {
			fmt.Printf("Timer running on %q\n", project.Name)
			return nil
		}
	}
	fmt.Println("Timer running")
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tracker.PauseTimer(); err != nil {
		return err
	}
	fmt.Printf("Paused at %s\n", formatDuration(app.Tracker.Elapsed().Milliseconds()))
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Tracker.StopTimer(context.Background())
	if err != nil {
		if errors.Is(err, tracker.ErrNoTimer) {
			return fmt.Errorf("no timer in progress")
		}
		return err
	}

	fmt.Printf("Session saved: %s\n", formatDuration(result.Session.Duration))
	if result.Deferred {
		fmt.Println("Saved locally; it will reach the server on the next sync.")
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if session := app.Tracker.OpenSession(); session != nil {
		project := app.Tracker.ProjectByID(session.ProjectID)
		name := session.ProjectID
		if project != nil {
			name = project.Name
		}
		state := "running"
		if !app.Tracker.Running() {
			state = "paused"
		}
		fmt.Printf("Timer %s on %q: %s (%d records)\n",
			state, name, formatDuration(app.Tracker.Elapsed().Milliseconds()), len(session.Records))
	} else {
		fmt.Println("No timer in progress.")
	}

	fmt.Printf("Mode:    %s\n", app.Store.Mode())
	if app.Creds.LoggedIn() {
		fmt.Printf("Account: %s\n", app.Creds.Email())
	}
	if n := app.Tracker.PendingCount(); n > 0 {
		fmt.Printf("Pending: %d unsynced changes\n", n)
	}
	return nil
}
