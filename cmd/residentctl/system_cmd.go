package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/residentdesk/residentdesk/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Apply database migrations",
	GroupID:     "system",
	Annotations: map[string]string{noDatabase: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		down, _ := cmd.Flags().GetBool("down")
		if down {
			if err := database.MigrateDown(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All migrations reverted")
			return nil
		}
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

var bootstrapCmd = &cobra.Command{
	Use:     "bootstrap <email>",
	Short:   "Create the first super admin on an empty database",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := cli.svc.BootstrapSuperAdmin(cmd.Context(), args[0], cli.profiles)
		if err != nil {
			return err
		}
		if password == "" {
			return errors.New("accounts already exist; ask a super admin to create yours")
		}
		fmt.Fprintf(cli.out, "Super admin %s created. Password (shown once): %s\n", args[0], password)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("down", false, "revert every migration instead")
}
