package cli

import (
	"fmt"

	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [project]",
	Short: "List recorded sessions for a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tracker.LoadProjects(cmd.Context()); err != nil {
		logger.Warn("using cached sessions", logger.F("error", err.Error()))
	}

	var project *model.Project
	if len(args) > 0 {
		project = resolveProject(app.Tracker.Projects(), args[0])
		if project == nil {
			return fmt.Errorf("no project matching %q", args[0])
		}
	} else {
		project = app.Tracker.CurrentProject()
		if project == nil {
			return fmt.Errorf("no project selected; pass one or run 'zebra project use'")
		}
	}

	sessions := app.Tracker.SessionsByProjectID(project.ID)
	if len(sessions) == 0 {
		fmt.Printf("No sessions for %s\n", project.Name)
		return nil
	}

	fmt.Printf("Sessions for %s:\n", project.Name)
	var total int64
	for _, s := range sessions {
		dur := s.EffectiveDuration()
		total += dur
		when := "unknown start"
		if model.ValidDate(s.StartTime) {
			when = s.StartTime.Format("2006-01-02 15:04")
		}
		fmt.Printf("  %s  %-10s  %d record(s)\n", when, formatDuration(dur), len(s.Records))
	}
	fmt.Printf("Total: %s across %d session(s)\n", formatDuration(total), len(sessions))
	return nil
}
