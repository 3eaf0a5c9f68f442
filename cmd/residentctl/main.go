package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/residentdesk/residentdesk/internal/config"
)

// noDatabase marks commands that must not open a connection pool.
const noDatabase = "residentctl/no-database"

var (
	jsonOutput bool

	cfg *config.Config
	cli *app
)

var rootCmd = &cobra.Command{
	Use:          "residentctl <command>",
	Short:        "Admin console for residentdesk",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		setupLogger(cfg.LogLevel)

		if cmd.Annotations[noDatabase] == "true" {
			return nil
		}
		cli, err = newApp(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cli.json = jsonOutput
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cli != nil {
			cli.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "data", Title: "Residents and issues:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(watchCmd)

	// Residents and issues
	rootCmd.AddCommand(residentsCmd)
	rootCmd.AddCommand(issuesCmd)

	// System
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bootstrapCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupLogger logs to stderr so command output on stdout stays clean.
func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
