package dataaccess

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTicketDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewMongoTicketDal creates a new ticket data access layer backed by mongo.
func NewMongoTicketDal(l *slog.Logger, db *mongo.Database) TicketDal {
	return &mongoTicketDal{
		l:  l.With(slog.String(logging.KeyDal, ticketDalName)),
		db: db,
	}
}

func (d *mongoTicketDal) collection() *mongo.Collection {
	return d.db.Collection(collectionTickets)
}

func (d *mongoTicketDal) CreateTicket(ctx context.Context, ticket *entities.Ticket) (err error) {
	done := monitoring.Observe(ticketDalName, "create_ticket", BackendMongo)
	defer func() { done(err) }()

	n, err := d.collection().CountDocuments(ctx, bson.M{"channel_id": ticket.ChannelID, "closed": false})
	if err != nil {
		return storageError("count tickets", err)
	}
	if n > 0 {
		return ErrTicketExists
	}

	id, err := nextID(ctx, d.db, collectionTickets, 1)
	if err != nil {
		return err
	}

	ticket.ID = id
	ticket.Closed = false
	ticket.ClosedAt = nil
	if ticket.CreatedAt.Time().IsZero() {
		ticket.CreatedAt = custom.NewDatetime(time.Now().UTC())
	}

	if _, err := d.collection().InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTicketExists
		}
		return storageError("insert ticket", err)
	}
	return nil
}

func (d *mongoTicketDal) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*entities.Ticket, error) {
	ticket := new(entities.Ticket)
	if err := d.collection().FindOne(ctx, filter, opts...).Decode(ticket); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storageError("find ticket", err)
	}
	return ticket, nil
}

func (d *mongoTicketDal) FindOpenTicketByChannel(ctx context.Context, channelID string) (_ *entities.Ticket, err error) {
	done := monitoring.Observe(ticketDalName, "find_open_ticket", BackendMongo)
	defer func() { done(err) }()

	opts := options.FindOne().SetSort(bson.M{"id": -1})
	return d.findOne(ctx, bson.M{"channel_id": channelID, "closed": false}, opts)
}

func (d *mongoTicketDal) GetTicket(ctx context.Context, id int64) (_ *entities.Ticket, err error) {
	done := monitoring.Observe(ticketDalName, "get_ticket", BackendMongo)
	defer func() { done(err) }()

	return d.findOne(ctx, bson.M{"id": id})
}

func (d *mongoTicketDal) CloseTicket(ctx context.Context, id int64, reason, transcript string, closedAt time.Time) (err error) {
	done := monitoring.Observe(ticketDalName, "close_ticket", BackendMongo)
	defer func() { done(err) }()

	res, err := d.collection().UpdateOne(ctx, bson.M{"id": id, "closed": false}, bson.M{"$set": bson.M{
		"closed":     true,
		"reason":     reason,
		"transcript": transcript,
		"closed_at":  custom.NewDatetime(closedAt),
	}})
	if err != nil {
		return storageError("close ticket", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := d.collection().CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return storageError("count tickets", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrTicketClosed
}
