package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookhaven/library-app/config"
	"github.com/bookhaven/library-app/internal/repository"
	"github.com/bookhaven/library-app/internal/seed"
	"github.com/bookhaven/library-app/migrations"
	"github.com/bookhaven/library-app/pkg/logger"
	"github.com/bookhaven/library-app/pkg/postgres"
)

func openRepository(ctx context.Context) (repository.Repository, *sqlx.DB, *zap.Logger, error) {
	cfg := config.NewConfig()
	log := logger.NewLogger(cfg.Log, "library-cli")
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return repo, db, log, nil
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, db, log, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			return seed.Apply(ctx, repo, log)
		},
	}
}
