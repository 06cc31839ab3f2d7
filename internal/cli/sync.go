package cli

import (
	"fmt"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push and pull changes with the server now",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state",
	Args:  cobra.NoArgs,
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Store.Mode() != localstore.ModeCloud {
		return fmt.Errorf("sync requires cloud mode; run 'zebra mode cloud' after logging in")
	}
	if !app.Creds.LoggedIn() {
		return fmt.Errorf("not logged in; run 'zebra auth login'")
	}

	pending := app.Queue.Len()
	if err := app.Engine.SyncOnce(cmd.Context()); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Synced. %d pending change(s) flushed, %d remaining.\n", pending-app.Queue.Len(), app.Queue.Len())
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Mode:     %s\n", app.Store.Mode())
	if app.Creds.LoggedIn() {
		fmt.Printf("Account:  %s\n", app.Creds.Email())
	} else {
		fmt.Println("Account:  not logged in")
	}
	if ts, ok := app.Store.State(localstore.KeyLastSyncTime); ok && ts != "" {
		fmt.Printf("Last sync: %s\n", ts)
	} else {
		fmt.Println("Last sync: never")
	}
	fmt.Printf("Pending:  %d change(s)\n", app.Queue.Len())
	return nil
}
