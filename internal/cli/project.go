package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/zebra/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project and make it current",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name|id>",
	Short: "Select the current project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUse,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name|id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	projectAddCmd.Flags().StringP("description", "d", "", "Project description")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

// resolveProject matches a project by exact id, then by name
func resolveProject(projects []model.Project, arg string) *model.Project {
	for i := range projects {
		if projects[i].ID == arg {
			return &projects[i]
		}
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, arg) {
			return &projects[i]
		}
	}
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	name := strings.Join(args, " ")
	description, _ := cmd.Flags().GetString("description")

	project, deferred, err := app.Tracker.AddProject(context.Background(), name, description)
	if err != nil {
		return err
	}

	if deferred {
		fmt.Printf("Created %q locally; it will reach the server on the next sync.\n", project.Name)
	} else {
		fmt.Printf("Created %q\n", project.Name)
	}
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tracker.LoadProjects(context.Background()); err != nil {
		fmt.Printf("Warning: refresh failed (%v), showing cached data\n", err)
	}

	projects := app.Tracker.Projects()
	if len(projects) == 0 {
		fmt.Println("No projects. Create one with 'zebra project add <name>'.")
		return nil
	}

	current := app.Tracker.CurrentProject()
	for _, p := range projects {
		marker := " "
		if current != nil && current.ID == p.ID {
			marker = "*"
		}
		sessions := app.Tracker.SessionsByProjectID(p.ID)
		var total int64
		for i := range sessions {
			total += sessions[i].EffectiveDuration()
		}
		fmt.Printf("%s %-24s %4d sessions  %s\n", marker, p.Name, len(sessions), formatDuration(total))
	}
	return nil
}

func runProjectUse(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	project := resolveProject(app.Tracker.Projects(), args[0])
	if project == nil {
		return fmt.Errorf("no project matching %q", args[0])
	}
	if err := app.Tracker.SetCurrentProject(project.ID); err != nil {
		return err
	}
	fmt.Printf("Current project: %s\n", project.Name)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	project := resolveProject(app.Tracker.Projects(), args[0])
	if project == nil {
		return fmt.Errorf("no project matching %q", args[0])
	}

	if app.Config.ConfirmDelete {
		answer := promptLine(fmt.Sprintf("Delete %q and keep its sessions orphaned? [y/N] ", project.Name))
		if !strings.EqualFold(answer, "y") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := app.Tracker.DeleteProject(context.Background(), project.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %q\n", project.Name)
	return nil
}
