package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/warden/pkg/dataaccess/connection"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// NewSQLStore migrates db and returns a Store on top of it.
func NewSQLStore(ctx context.Context, l *slog.Logger, db *gorm.DB) (Store, error) {
	if err := Migrate(ctx, l, db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}

	return &store{
		PanelDal:  NewPanelDal(l, db),
		TicketDal: NewTicketDal(l, db),
		backend:   BackendSQL,
		ping: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		close: sqlDB.Close,
	}, nil
}

// NewMongoStore migrates the named database and returns a Store on top of it.
func NewMongoStore(ctx context.Context, l *slog.Logger, client *mongo.Client, database string) (Store, error) {
	db := client.Database(database)
	if err := MigrateMongo(ctx, l, db); err != nil {
		return nil, err
	}

	return &store{
		PanelDal:  NewMongoPanelDal(l, db),
		TicketDal: NewMongoTicketDal(l, db),
		backend:   BackendMongo,
		ping: func(ctx context.Context) error {
			return connection.Ping(ctx, client)
		},
		close: func() error {
			return client.Disconnect(context.Background())
		},
	}, nil
}
