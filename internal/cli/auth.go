package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the zebra server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and switch to cloud mode",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and fall back to local mode",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	data, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(data)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email := promptLine("Email: ")
	password := promptPassword("Password: ")

	resp, err := app.Client.Login(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := app.Creds.SetCredentials(resp.Token, email); err != nil {
		return err
	}
	if err := app.Store.SetMode(localstore.ModeCloud); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (cloud mode)\n", email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email := promptLine("Email: ")
	name := promptLine("Name: ")
	password := promptPassword("Password: ")
	confirm := promptPassword("Confirm password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	resp, err := app.Client.Register(context.Background(), email, password, name)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := app.Creds.SetCredentials(resp.Token, email); err != nil {
		return err
	}
	if err := app.Store.SetMode(localstore.ModeCloud); err != nil {
		return err
	}

	fmt.Printf("Account created, logged in as %s (cloud mode)\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Creds.LoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := app.Creds.Clear(); err != nil {
		return err
	}
	if err := app.Store.SetMode(localstore.ModeLocal); err != nil {
		return err
	}
	_ = app.Store.DeleteState(localstore.KeyLastSyncTime)
	app.Queue.Clear()

	fmt.Println("Logged out (local mode).")
	return nil
}
