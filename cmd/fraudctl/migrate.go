package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
	"github.com/Skotchmaster/fraud_reporting/pkg/db"
)

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, admins and transactions tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect(cmd, open)
			if err != nil {
				return err
			}
			if err := db.Migrate(cmd.Context(), conn, models.All()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
