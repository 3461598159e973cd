package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	appRepos "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	appServices "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/bootstrap"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Elasticsearch indices from Postgres",
	Long: `Push every non-event post and every user into the search indices.
Requires search.enabled (SEARCH_ENABLED=true).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer e.database.Close()

		client, err := bootstrap.NewSearchClient(cmd.Context(), e.cfg, e.logger)
		if err != nil {
			return err
		}
		if client == nil {
			return errors.New("search is disabled, set SEARCH_ENABLED=true")
		}

		repos := appRepos.NewRepositories(e.database.Pool)
		svc := appServices.NewSearchService(repos.PostRepository, repos.UserRepository, nil, client, e.logger)

		posts, users, err := svc.Reindex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d posts and %d users\n", posts, users)
		return nil
	},
}
