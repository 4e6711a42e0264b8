package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/warden/cmd/bot/config"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/connection"
)

// connectStore opens the configured backend and migrates it.
func connectStore(ctx context.Context, l *slog.Logger, cfg *config.Config) (dataaccess.Store, error) {
	if cfg.UsesMongo() {
		client, err := (&connection.MongoDB{ConnectionString: cfg.MongoUri}).Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		return dataaccess.NewMongoStore(ctx, l, client, cfg.MongoDatabase)
	}

	sqlConn := &connection.SQL{
		Driver: cfg.StoreDriver,
		DSN:    cfg.DatabaseDSN,
	}
	if cfg.StoreDriver == connection.DriverSQLite {
		// sqlite allows a single writer.
		sqlConn.MaxOpenConns = 1
	}

	db, err := sqlConn.Connect(l)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", cfg.StoreDriver, err)
	}
	return dataaccess.NewSQLStore(ctx, l, db)
}
