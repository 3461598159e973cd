package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appRepos "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and optional fake data",
	Long: `Create the default admin account (password from ADMIN_PASSWORD) and,
with --fake, a batch of verified users with posts, connections and research
topics for local development.

Examples:
  ADMIN_PASSWORD=secret admin seed
  admin seed --fake 50 --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fake, _ := cmd.Flags().GetInt("fake")
		seedValue, _ := cmd.Flags().GetInt64("seed")

		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer e.database.Close()

		repos := appRepos.NewRepositories(e.database.Pool)
		if err := seed.CreateDefaultData(cmd.Context(), repos, os.Getenv("ADMIN_PASSWORD"), e.logger); err != nil {
			return err
		}
		if fake <= 0 {
			return nil
		}

		res, err := seed.NewSeeder(repos, seedValue, e.logger).Fake(cmd.Context(), fake)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d users, %d posts, %d connections, %d collaborations\n",
			res.Users, res.Posts, res.Connections, res.Collaborations)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("fake", 0, "Number of fake users to create")
	seedCmd.Flags().Int64("seed", 0, "Random seed for reproducible fake data (0 = time based)")
}
