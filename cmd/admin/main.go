package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/bootstrap"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/config"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/db"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "NoobSquad admin - database and search maintenance",
	Long: `Operational commands for the NoobSquad API.
Configuration is read the same way the API reads it: configs/config.yaml
(or CONFIG_PATH), an optional .env file and environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reindexCmd)
}

// env is what every subcommand needs: configuration, a logger and the pool
type env struct {
	cfg      *config.Config
	logger   zerolog.Logger
	database *db.PostgresDB
}

func connect(ctx context.Context) (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, err
	}
	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: lgr, database: database}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
