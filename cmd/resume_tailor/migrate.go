package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the run mirror tables",
	Long:  "Applies the embedded migrations to the PostgreSQL database given by --db-url or DATABASE_URL.",
	RunE:  runMigrateCmd,
}

func init() {
	rootCmd.AddCommand(migrateCommand)
}

func runMigrateCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.DatabaseURL == "" {
		return errors.New("a database URL is required (--db-url or DATABASE_URL)")
	}
	if _, err := a.database(cmd.Context()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}
