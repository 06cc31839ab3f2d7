package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/zebra/internal/config"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "zebra",
	Short: "Zebra - terminal time tracker with cloud sync",
	Long: `Zebra tracks time against projects, with notes attached to running
sessions and optional sync across devices.

Run 'zebra' without arguments to launch the interactive timer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}

		logCfg := logger.DefaultConfig()
		logCfg.Level = logger.ParseLevel(cfg.LogLevel)
		logCfg.FilePath = cfg.LogFile
		logCfg.Console = cfg.LogConsole

		if err := logger.Init(logCfg); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("zebra started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Store.Mode() == localstore.ModeCloud && app.Creds.LoggedIn() {
			app.Engine.Start()
		}

		m := tui.NewModel(app.Tracker, app.Engine)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("tui error", logger.F("error", err))
			return fmt.Errorf("failed to run ui: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("zebra exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(modeCmd)
}
