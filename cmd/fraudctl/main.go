package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/pkg/config"
	"github.com/Skotchmaster/fraud_reporting/pkg/db"
)

var Version = "dev"

type opener func(ctx context.Context, dsn string) (*gorm.DB, error)

func main() {
	config.LoadDotEnv()
	if err := newRootCmd(db.Open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "fraudctl",
		Short:         "Operations tool for the fraud reporting backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "database DSN (defaults to DATABASE_URL)")

	root.AddCommand(migrateCmd(open))
	root.AddCommand(adminCmd(open))
	root.AddCommand(topicsCmd())
	return root
}

func connect(cmd *cobra.Command, open opener) (*gorm.DB, error) {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		dsn = config.Load().DatabaseURL
	}
	if dsn == "" {
		return nil, fmt.Errorf("no database configured: pass --database-url or set DATABASE_URL")
	}
	return open(cmd.Context(), dsn)
}
