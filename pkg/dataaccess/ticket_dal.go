package dataaccess

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"gorm.io/gorm"
)

const ticketDalName = "ticket_dal"

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *gorm.DB
}

// NewTicketDal creates a new ticket data access layer backed by gorm.
func NewTicketDal(l *slog.Logger, db *gorm.DB) TicketDal {
	return &ticketDal{
		l:  l.With(slog.String(logging.KeyDal, ticketDalName)),
		db: db,
	}
}

func (d *ticketDal) CreateTicket(ctx context.Context, ticket *entities.Ticket) (err error) {
	done := monitoring.Observe(ticketDalName, "create_ticket", BackendSQL)
	defer func() { done(err) }()

	ticket.Closed = false
	ticket.ClosedAt = nil
	if ticket.CreatedAt.Time().IsZero() {
		ticket.CreatedAt = custom.NewDatetime(time.Now().UTC())
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Ticket{}).
			Where("channel_id = ? AND closed = ?", ticket.ChannelID, false).
			Count(&count).Error; err != nil {
			return storageError("count tickets", err)
		}
		if count > 0 {
			return ErrTicketExists
		}

		if err := tx.Create(ticket).Error; err != nil {
			return storageError("create ticket", err)
		}
		return nil
	})
}

func (d *ticketDal) FindOpenTicketByChannel(ctx context.Context, channelID string) (_ *entities.Ticket, err error) {
	done := monitoring.Observe(ticketDalName, "find_open_ticket", BackendSQL)
	defer func() { done(err) }()

	ticket := new(entities.Ticket)
	err = d.db.WithContext(ctx).
		Where("channel_id = ? AND closed = ?", custom.Snowflake(channelID), false).
		Order("id DESC").
		First(ticket).Error
	if err != nil {
		return nil, notFoundOr("find open ticket", err)
	}
	return ticket, nil
}

func (d *ticketDal) GetTicket(ctx context.Context, id int64) (_ *entities.Ticket, err error) {
	done := monitoring.Observe(ticketDalName, "get_ticket", BackendSQL)
	defer func() { done(err) }()

	ticket := new(entities.Ticket)
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(ticket).Error; err != nil {
		return nil, notFoundOr("get ticket", err)
	}
	return ticket, nil
}

func (d *ticketDal) CloseTicket(ctx context.Context, id int64, reason, transcript string, closedAt time.Time) (err error) {
	done := monitoring.Observe(ticketDalName, "close_ticket", BackendSQL)
	defer func() { done(err) }()

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Ticket{}).
			Where("id = ? AND closed = ?", id, false).
			Updates(map[string]any{
				"closed":     true,
				"reason":     reason,
				"transcript": transcript,
				"closed_at":  custom.NewDatetime(closedAt.UTC()),
			})
		if res.Error != nil {
			return storageError("close ticket", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&entities.Ticket{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return storageError("count tickets", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrTicketClosed
	})
}
