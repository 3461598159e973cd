package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/migrations"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/bootstrap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every embedded SQL migration that has not been recorded yet.

Examples:
  admin migrate
  admin migrate --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			files, err := migrations.Pending(migrations.Files())
			if err != nil {
				return err
			}
			for _, name := range files {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer e.database.Close()

		return bootstrap.RunMigrations(cmd.Context(), e.database, e.logger)
	},
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "List embedded migration files without touching the database")
}
