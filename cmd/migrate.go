package main

import (
	"errors"
	"fmt"

	"bug-lifecycle-tracker/config"
	"bug-lifecycle-tracker/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.Backend != config.BackendPostgres {
				return errors.New("migrate requires storage.backend=postgres")
			}
			pg := postgres.New(cmd.Context(), a.log, a.cfg)
			if status {
				version, err := pg.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
				return nil
			}
			return pg.Migrate(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print the applied schema version instead of migrating")
	return cmd
}
