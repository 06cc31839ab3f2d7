package cli

import (
	"fmt"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode [local|cloud]",
	Short: "Show or change the storage mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if len(args) == 0 {
		fmt.Println(app.Store.Mode())
		return nil
	}

	switch args[0] {
	case localstore.ModeLocal:
		if err := app.Store.SetMode(localstore.ModeLocal); err != nil {
			return err
		}
		fmt.Println("Storage mode set to local. Data stays on this machine.")
	case localstore.ModeCloud:
		if !app.Creds.LoggedIn() {
			return fmt.Errorf("cloud mode requires an account; run 'zebra auth login' first")
		}
		if err := app.Store.SetMode(localstore.ModeCloud); err != nil {
			return err
		}
		fmt.Println("Storage mode set to cloud. Changes sync to the server.")
	default:
		return fmt.Errorf("unknown mode %q; want local or cloud", args[0])
	}
	return nil
}
