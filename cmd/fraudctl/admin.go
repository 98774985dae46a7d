package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/fraud_reporting/internal/repo"
	"github.com/Skotchmaster/fraud_reporting/internal/service"
	"github.com/Skotchmaster/fraud_reporting/pkg/config"
)

func adminCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(adminCreateCmd(open))
	return cmd
}

func adminCreateCmd(open opener) *cobra.Command {
	var in service.SignupInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an administrator without going through the HTTP API",
		Example: `  fraudctl admin create --email root@example.com --first-name Root --last-name Admin --password 'S3cure!pass'
  FRAUDCTL_ADMIN_PASSWORD='S3cure!pass' fraudctl admin create --email root@example.com --first-name Root --last-name Admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = config.EnvDefault("FRAUDCTL_ADMIN_PASSWORD", "")
			}

			conn, err := connect(cmd, open)
			if err != nil {
				return err
			}
			svc := &service.SessionService{
				Store:  repo.NewAdminIdentities(conn),
				Policy: service.AdminPolicy(0, 0),
			}
			ident, err := svc.Register(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("admin create: %s: %w", service.Reason(err, "failed"), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %s\n", ident.Email, ident.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "admin first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "admin last name")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (defaults to FRAUDCTL_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
