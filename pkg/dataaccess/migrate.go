package dataaccess

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// The structs below describe the tables as each migration left them. They
// must not follow changes to the entities.

type dbVersion struct {
	Version int `gorm:"column:version;primaryKey;autoIncrement:false"`
}

func (dbVersion) TableName() string { return "db_version" }

type panelV1 struct {
	ID               int64  `gorm:"column:id;primaryKey;autoIncrement"`
	PanelName        string `gorm:"column:panel_name;type:varchar(100);not null"`
	CategoryID       *int64 `gorm:"column:category_id"`
	LogChannelID     *int64 `gorm:"column:log_channel_id"`
	GuildID          int64  `gorm:"column:guild_id;not null"`
	EmbedTitle       string `gorm:"column:embed_title;type:text;not null"`
	EmbedDescription string `gorm:"column:embed_description;type:text;not null"`
	EmbedColor       string `gorm:"column:embed_color;type:varchar(16)"`
}

func (panelV1) TableName() string { return "panels" }

type ticketOptionV1 struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	PanelID    int64   `gorm:"column:panel_id;not null"`
	Panel      panelV1 `gorm:"foreignKey:PanelID;references:ID;constraint:OnDelete:CASCADE"`
	OptionName string  `gorm:"column:option_name;type:varchar(100);not null"`
	Roles      string  `gorm:"column:roles;type:text"`
	CategoryID int64   `gorm:"column:category_id;not null"`
}

func (ticketOptionV1) TableName() string { return "ticket_options" }

type ticketV1 struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	TicketName   string     `gorm:"column:ticket_name;type:varchar(100)"`
	UserID       *int64     `gorm:"column:user_id"`
	ChannelID    *int64     `gorm:"column:channel_id"`
	GuildID      *int64     `gorm:"column:guild_id"`
	LogChannelID *int64     `gorm:"column:log_channel_id"`
	Closed       bool       `gorm:"column:closed;not null;default:false"`
	Transcript   string     `gorm:"column:transcript;type:longtext"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	ClosedAt     *time.Time `gorm:"column:closed_at"`
}

func (ticketV1) TableName() string { return "tickets" }

type ticketV2 struct {
	Reason string `gorm:"column:reason;type:text"`
}

func (ticketV2) TableName() string { return "tickets" }

type ticketOptionV3 struct {
	EmbedTitle       string `gorm:"column:embed_title;type:text"`
	EmbedDescription string `gorm:"column:embed_description;type:text"`
	TicketQuestion   string `gorm:"column:ticket_question;type:text"`
}

func (ticketOptionV3) TableName() string { return "ticket_options" }

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// migrations are applied in order. Every step must be safe to run against a
// database where its changes already exist.
var migrations = []migration{
	{version: 1, name: "base tables", up: migrateBaseTables},
	{version: 2, name: "ticket reason", up: migrateTicketReason},
	{version: 3, name: "option embeds and questions", up: migrateOptionEmbeds},
	{version: 4, name: "lookup indexes", up: migrateLookupIndexes},
	{version: 5, name: "unique panel names", up: migrateUniquePanelNames},
}

// LatestVersion is the schema version after every migration has run.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate brings the schema up to LatestVersion. The current version is kept
// as the single row of the db_version table. Each step and its version bump
// are committed together.
func Migrate(ctx context.Context, l *slog.Logger, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if !db.Migrator().HasTable(&dbVersion{}) {
		if err := db.Migrator().CreateTable(&dbVersion{}); err != nil {
			return fmt.Errorf("error creating version table: %w", err)
		}
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return setVersion(tx, m.version)
		})
		if err != nil {
			return fmt.Errorf("error applying migration %d (%s): %w", m.version, m.name, err)
		}

		l.Info("Applied migration",
			slog.Int("version", m.version),
			slog.String("name", m.name),
		)
		current = m.version
	}

	return nil
}

// SchemaVersion returns the recorded schema version, zero when none is recorded.
func SchemaVersion(db *gorm.DB) (int, error) {
	var v sql.NullInt64
	if err := db.Model(&dbVersion{}).Select("MAX(version)").Scan(&v).Error; err != nil {
		return 0, fmt.Errorf("error reading schema version: %w", err)
	}
	return int(v.Int64), nil
}

func setVersion(tx *gorm.DB, version int) error {
	var count int64
	if err := tx.Model(&dbVersion{}).Count(&count).Error; err != nil {
		return fmt.Errorf("error counting versions: %w", err)
	}

	if count == 0 {
		if err := tx.Create(&dbVersion{Version: version}).Error; err != nil {
			return fmt.Errorf("error recording version: %w", err)
		}
		return nil
	}

	if err := tx.Model(&dbVersion{}).Where("1 = 1").Update("version", version).Error; err != nil {
		return fmt.Errorf("error recording version: %w", err)
	}
	return nil
}

func migrateBaseTables(tx *gorm.DB) error {
	for _, t := range []any{&panelV1{}, &ticketOptionV1{}, &ticketV1{}} {
		if tx.Migrator().HasTable(t) {
			continue
		}
		if err := tx.Migrator().CreateTable(t); err != nil {
			return fmt.Errorf("error creating table: %w", err)
		}
	}
	return nil
}

func migrateTicketReason(tx *gorm.DB) error {
	return addMissingColumns(tx, &ticketV2{}, "reason")
}

func migrateOptionEmbeds(tx *gorm.DB) error {
	return addMissingColumns(tx, &ticketOptionV3{}, "embed_title", "embed_description", "ticket_question")
}

func addMissingColumns(tx *gorm.DB, model any, columns ...string) error {
	for _, c := range columns {
		if tx.Migrator().HasColumn(model, c) {
			continue
		}
		if err := tx.Migrator().AddColumn(model, c); err != nil {
			return fmt.Errorf("error adding column %s: %w", c, err)
		}
	}
	return nil
}

type index struct {
	model  any
	table  string
	name   string
	unique bool
	cols   string
}

func (i index) create(tx *gorm.DB) error {
	if tx.Migrator().HasIndex(i.model, i.name) {
		return nil
	}

	stmt := "CREATE INDEX"
	if i.unique {
		stmt = "CREATE UNIQUE INDEX"
	}
	if err := tx.Exec(fmt.Sprintf("%s %s ON %s (%s)", stmt, i.name, i.table, i.cols)).Error; err != nil {
		return fmt.Errorf("error creating index %s: %w", i.name, err)
	}
	return nil
}

func migrateLookupIndexes(tx *gorm.DB) error {
	indexes := []index{
		{model: &panelV1{}, table: "panels", name: "idx_panels_log_channel", cols: "log_channel_id"},
		{model: &ticketOptionV1{}, table: "ticket_options", name: "idx_ticket_options_panel", cols: "panel_id"},
	}
	for _, i := range indexes {
		if err := i.create(tx); err != nil {
			return err
		}
	}
	return nil
}

// migrateUniquePanelNames renames panels that share a name within a guild to
// <name>-<id>, keeping the oldest, so the unique index can be built.
func migrateUniquePanelNames(tx *gorm.DB) error {
	var panels []panelV1
	if err := tx.Order("guild_id, id").Find(&panels).Error; err != nil {
		return fmt.Errorf("error listing panels: %w", err)
	}

	type key struct {
		guild int64
		name  string
	}
	seen := make(map[key]bool, len(panels))
	for _, p := range panels {
		k := key{guild: p.GuildID, name: p.PanelName}
		if !seen[k] {
			seen[k] = true
			continue
		}

		renamed := fmt.Sprintf("%s-%d", p.PanelName, p.ID)
		if err := tx.Model(&panelV1{}).Where("id = ?", p.ID).Update("panel_name", renamed).Error; err != nil {
			return fmt.Errorf("error renaming panel %d: %w", p.ID, err)
		}
	}

	indexes := []index{
		{model: &panelV1{}, table: "panels", name: "idx_panels_guild_name", unique: true, cols: "guild_id, panel_name"},
		{model: &ticketV1{}, table: "tickets", name: "idx_tickets_channel", cols: "channel_id, closed"},
	}
	for _, i := range indexes {
		if err := i.create(tx); err != nil {
			return err
		}
	}
	return nil
}
