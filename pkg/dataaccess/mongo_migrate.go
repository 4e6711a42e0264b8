package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionVersion = "db_version"

type mongoMigration struct {
	version int
	name    string
	up      func(ctx context.Context, db *mongo.Database) error
}

// mongoMigrations only build indexes. Creating an index that already exists
// with the same keys and options is a no-op.
var mongoMigrations = []mongoMigration{
	{version: 1, name: "unique panel names", up: func(ctx context.Context, db *mongo.Database) error {
		return createIndex(ctx, db.Collection(collectionPanels), mongo.IndexModel{
			Keys:    bson.D{{Key: "guild_id", Value: 1}, {Key: "panel_name", Value: 1}},
			Options: options.Index().SetName("idx_panels_guild_name").SetUnique(true),
		})
	}},
	{version: 2, name: "one open ticket per channel", up: func(ctx context.Context, db *mongo.Database) error {
		return createIndex(ctx, db.Collection(collectionTickets), mongo.IndexModel{
			Keys: bson.D{{Key: "channel_id", Value: 1}},
			Options: options.Index().
				SetName("idx_tickets_open_channel").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"closed": false}),
		})
	}},
	{version: 3, name: "lookup indexes", up: func(ctx context.Context, db *mongo.Database) error {
		if err := createIndex(ctx, db.Collection(collectionPanels), mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_panels_id").SetUnique(true),
		}); err != nil {
			return err
		}
		if err := createIndex(ctx, db.Collection(collectionPanels), mongo.IndexModel{
			Keys:    bson.D{{Key: "options.id", Value: 1}},
			Options: options.Index().SetName("idx_panels_option_id"),
		}); err != nil {
			return err
		}
		return createIndex(ctx, db.Collection(collectionTickets), mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_tickets_id").SetUnique(true),
		})
	}},
}

func createIndex(ctx context.Context, c *mongo.Collection, model mongo.IndexModel) error {
	if _, err := c.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("error creating index on %s: %w", c.Name(), err)
	}
	return nil
}

// MigrateMongo builds the indexes the mongo store relies on. The applied
// version is kept in the db_version collection.
func MigrateMongo(ctx context.Context, l *slog.Logger, db *mongo.Database) error {
	var current struct {
		Version int `bson:"version"`
	}
	err := db.Collection(collectionVersion).FindOne(ctx, bson.M{"_id": "schema"}).Decode(&current)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("error reading schema version: %w", err)
	}

	for _, m := range mongoMigrations {
		if m.version <= current.Version {
			continue
		}

		if err := m.up(ctx, db); err != nil {
			return fmt.Errorf("error applying migration %d (%s): %w", m.version, m.name, err)
		}

		opts := options.Update().SetUpsert(true)
		if _, err := db.Collection(collectionVersion).UpdateOne(ctx,
			bson.M{"_id": "schema"},
			bson.M{"$set": bson.M{"version": m.version}},
			opts,
		); err != nil {
			return fmt.Errorf("error recording version %d: %w", m.version, err)
		}

		l.Info("Applied migration",
			slog.Int("version", m.version),
			slog.String("name", m.name),
			slog.String("backend", BackendMongo),
		)
		current.Version = m.version
	}
	return nil
}
