package dataaccess

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"gorm.io/gorm"
)

const panelDalName = "panel_dal"

type panelDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *gorm.DB
}

// NewPanelDal creates a new panel data access layer backed by gorm.
func NewPanelDal(l *slog.Logger, db *gorm.DB) PanelDal {
	return &panelDal{
		l:  l.With(slog.String(logging.KeyDal, panelDalName)),
		db: db,
	}
}

func (d *panelDal) CreatePanel(ctx context.Context, panel *entities.Panel, options []*entities.TicketOption) (err error) {
	done := monitoring.Observe(panelDalName, "create_panel", BackendSQL)
	defer func() { done(err) }()

	if err := panel.Validate(); err != nil {
		return err
	}
	if len(options) == 0 {
		return ErrNoOptions
	}
	for _, o := range options {
		if err := o.Validate(); err != nil {
			return err
		}
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Panel{}).
			Where("guild_id = ? AND panel_name = ?", panel.GuildID, panel.Name).
			Count(&count).Error; err != nil {
			return storageError("count panels", err)
		}
		if count > 0 {
			return ErrDuplicatePanel
		}

		if err := tx.Create(panel).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicatePanel
			}
			return storageError("create panel", err)
		}

		for _, o := range options {
			if err := insertOption(tx, panel.ID, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *panelDal) AddOption(ctx context.Context, panelID int64, option *entities.TicketOption) (err error) {
	done := monitoring.Observe(panelDalName, "add_option", BackendSQL)
	defer func() { done(err) }()

	if err := option.Validate(); err != nil {
		return err
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := panelExists(tx, panelID); err != nil {
			return err
		}
		return insertOption(tx, panelID, option)
	})
}

func insertOption(tx *gorm.DB, panelID int64, option *entities.TicketOption) error {
	option.PanelID = panelID
	if err := tx.Create(option).Error; err != nil {
		return storageError("create option", err)
	}
	return nil
}

func panelExists(tx *gorm.DB, panelID int64) error {
	var count int64
	if err := tx.Model(&entities.Panel{}).Where("id = ?", panelID).Count(&count).Error; err != nil {
		return storageError("count panels", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *panelDal) FindPanelByName(ctx context.Context, guildID, name string) (_ *entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "find_panel_by_name", BackendSQL)
	defer func() { done(err) }()

	panel := new(entities.Panel)
	err = d.db.WithContext(ctx).
		Where("guild_id = ? AND panel_name = ?", custom.Snowflake(guildID), name).
		First(panel).Error
	if err != nil {
		return nil, notFoundOr("find panel", err)
	}
	return panel, nil
}

func (d *panelDal) GetPanel(ctx context.Context, id int64) (_ *entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "get_panel", BackendSQL)
	defer func() { done(err) }()

	panel := new(entities.Panel)
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(panel).Error; err != nil {
		return nil, notFoundOr("get panel", err)
	}
	return panel, nil
}

func (d *panelDal) ListPanels(ctx context.Context, guildID string) (_ []*entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "list_panels", BackendSQL)
	defer func() { done(err) }()

	panels := make([]*entities.Panel, 0)
	if err := d.db.WithContext(ctx).
		Where("guild_id = ?", custom.Snowflake(guildID)).
		Order("panel_name").
		Find(&panels).Error; err != nil {
		return nil, storageError("list panels", err)
	}
	return panels, nil
}

func (d *panelDal) ListOptions(ctx context.Context, panelID int64) (_ []*entities.TicketOption, err error) {
	done := monitoring.Observe(panelDalName, "list_options", BackendSQL)
	defer func() { done(err) }()

	options := make([]*entities.TicketOption, 0)
	if err := d.db.WithContext(ctx).
		Where("panel_id = ?", panelID).
		Order("id").
		Find(&options).Error; err != nil {
		return nil, storageError("list options", err)
	}
	return options, nil
}

func (d *panelDal) GetOption(ctx context.Context, id int64) (_ *entities.TicketOption, err error) {
	done := monitoring.Observe(panelDalName, "get_option", BackendSQL)
	defer func() { done(err) }()

	option := new(entities.TicketOption)
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(option).Error; err != nil {
		return nil, notFoundOr("get option", err)
	}
	return option, nil
}

func (d *panelDal) UpdatePanel(ctx context.Context, panel *entities.Panel) (err error) {
	done := monitoring.Observe(panelDalName, "update_panel", BackendSQL)
	defer func() { done(err) }()

	if err := panel.Validate(); err != nil {
		return err
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Checked up front, some drivers only report changed rows as affected.
		if err := panelExists(tx, panel.ID); err != nil {
			return err
		}

		err := tx.Model(&entities.Panel{}).Where("id = ?", panel.ID).Updates(map[string]any{
			"embed_title":       panel.EmbedTitle,
			"embed_description": panel.EmbedDescription,
			"embed_color":       panel.EmbedColor,
			"category_id":       panel.CategoryID,
			"log_channel_id":    panel.LogChannelID,
		}).Error
		if err != nil {
			return storageError("update panel", err)
		}
		return nil
	})
}

func (d *panelDal) DeletePanel(ctx context.Context, id int64) (err error) {
	done := monitoring.Observe(panelDalName, "delete_panel", BackendSQL)
	defer func() { done(err) }()

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("panel_id = ?", id).Delete(&entities.TicketOption{}).Error; err != nil {
			return storageError("delete options", err)
		}

		res := tx.Where("id = ?", id).Delete(&entities.Panel{})
		if res.Error != nil {
			return storageError("delete panel", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (d *panelDal) DeleteAllPanels(ctx context.Context, guildID string) (n int64, err error) {
	done := monitoring.Observe(panelDalName, "delete_all_panels", BackendSQL)
	defer func() { done(err) }()

	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&entities.Panel{}).Select("id").Where("guild_id = ?", custom.Snowflake(guildID))
		if err := tx.Where("panel_id IN (?)", ids).Delete(&entities.TicketOption{}).Error; err != nil {
			return storageError("delete options", err)
		}

		res := tx.Where("guild_id = ?", custom.Snowflake(guildID)).Delete(&entities.Panel{})
		if res.Error != nil {
			return storageError("delete panels", res.Error)
		}
		n = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	d.l.Debug("Deleted panels", slog.String(logging.KeyGuild, guildID), slog.Int64("count", n))
	return n, nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return storageError(op, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}

