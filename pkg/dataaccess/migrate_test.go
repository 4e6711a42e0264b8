package dataaccess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrate_Fresh(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Migrate(ctx, testLogger(), db))

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, LatestVersion(), v)

	m := db.Migrator()
	require.True(t, m.HasColumn(&ticketV2{}, "reason"))
	require.True(t, m.HasColumn(&ticketOptionV3{}, "ticket_question"))
	require.True(t, m.HasIndex(&panelV1{}, "idx_panels_guild_name"))
	require.True(t, m.HasIndex(&ticketV1{}, "idx_tickets_channel"))

	// Running again changes nothing.
	require.NoError(t, Migrate(ctx, testLogger(), db))

	var rows int64
	require.NoError(t, db.Model(&dbVersion{}).Count(&rows).Error)
	require.Equal(t, int64(1), rows)
}

func TestMigrate_Legacy(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	legacy := []string{
		`CREATE TABLE db_version (version INTEGER PRIMARY KEY)`,
		`INSERT INTO db_version (version) VALUES (1)`,
		`CREATE TABLE panels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			panel_name TEXT NOT NULL,
			category_id INTEGER,
			log_channel_id INTEGER,
			guild_id INTEGER NOT NULL,
			embed_title TEXT NOT NULL,
			embed_description TEXT NOT NULL,
			embed_color TEXT
		)`,
		`CREATE TABLE ticket_options (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			panel_id INTEGER NOT NULL,
			option_name TEXT NOT NULL,
			roles TEXT,
			category_id INTEGER NOT NULL,
			FOREIGN KEY (panel_id) REFERENCES panels(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE tickets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticket_name TEXT,
			user_id INTEGER,
			channel_id INTEGER,
			guild_id INTEGER,
			log_channel_id INTEGER,
			closed BOOLEAN DEFAULT 0,
			transcript TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			closed_at TIMESTAMP
		)`,
		`INSERT INTO panels (panel_name, guild_id, embed_title, embed_description) VALUES ('help', 1, 't', 'd')`,
		`INSERT INTO panels (panel_name, guild_id, embed_title, embed_description) VALUES ('help', 1, 't', 'd')`,
		`INSERT INTO panels (panel_name, guild_id, embed_title, embed_description) VALUES ('help', 2, 't', 'd')`,
		`INSERT INTO ticket_options (panel_id, option_name, roles, category_id) VALUES (1, 'a', '10,20', 7)`,
	}
	for _, stmt := range legacy {
		require.NoError(t, db.Exec(stmt).Error)
	}

	require.NoError(t, Migrate(ctx, testLogger(), db))

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, LatestVersion(), v)

	require.True(t, db.Migrator().HasColumn(&ticketV2{}, "reason"))
	require.True(t, db.Migrator().HasColumn(&ticketOptionV3{}, "embed_title"))

	var names []string
	require.NoError(t, db.Model(&panelV1{}).Order("id").Pluck("panel_name", &names).Error)
	require.Equal(t, []string{"help", "help-2", "help"}, names)

	// The existing option survives and reads back through the store.
	s, err := NewSQLStore(ctx, testLogger(), db)
	require.NoError(t, err)

	options, err := s.ListOptions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, options, 1)
	require.Equal(t, "a", options[0].Name)
	require.Empty(t, options[0].Questions)
	require.Len(t, options[0].RoleIDs, 2)
}
