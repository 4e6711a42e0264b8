package dataaccess

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Jacobbrewer1/warden/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// collectionPanels holds one document per panel with its options embedded.
	collectionPanels = "panels"

	// collectionTickets holds one document per ticket.
	collectionTickets = "tickets"

	// collectionCounters holds the integer ID sequences.
	collectionCounters = "counters"
)

// panelDocument is how a panel is kept in mongo.
type panelDocument struct {
	entities.Panel `bson:",inline"`

	Options []*entities.TicketOption `bson:"options"`
}

func (d *panelDocument) options() []*entities.TicketOption {
	for _, o := range d.Options {
		o.PanelID = d.ID
	}
	return d.Options
}

type mongoPanelDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewMongoPanelDal creates a new panel data access layer backed by mongo.
func NewMongoPanelDal(l *slog.Logger, db *mongo.Database) PanelDal {
	return &mongoPanelDal{
		l:  l.With(slog.String(logging.KeyDal, panelDalName)),
		db: db,
	}
}

func (d *mongoPanelDal) collection() *mongo.Collection {
	return d.db.Collection(collectionPanels)
}

func (d *mongoPanelDal) CreatePanel(ctx context.Context, panel *entities.Panel, opts []*entities.TicketOption) (err error) {
	done := monitoring.Observe(panelDalName, "create_panel", BackendMongo)
	defer func() { done(err) }()

	if err := panel.Validate(); err != nil {
		return err
	}
	if len(opts) == 0 {
		return ErrNoOptions
	}
	for _, o := range opts {
		if err := o.Validate(); err != nil {
			return err
		}
	}

	n, err := d.collection().CountDocuments(ctx, bson.M{"guild_id": panel.GuildID, "panel_name": panel.Name})
	if err != nil {
		return storageError("count panels", err)
	}
	if n > 0 {
		return ErrDuplicatePanel
	}

	panelID, err := nextID(ctx, d.db, collectionPanels, 1)
	if err != nil {
		return err
	}
	firstOption, err := nextID(ctx, d.db, "ticket_options", int64(len(opts)))
	if err != nil {
		return err
	}

	doc := &panelDocument{Panel: *panel, Options: opts}
	doc.ID = panelID
	for i, o := range opts {
		o.ID = firstOption + int64(i)
		o.PanelID = panelID
	}

	// The unique index still rejects a panel that raced past the count.
	if _, err := d.collection().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePanel
		}
		return storageError("insert panel", err)
	}

	panel.ID = panelID
	return nil
}

func (d *mongoPanelDal) AddOption(ctx context.Context, panelID int64, option *entities.TicketOption) (err error) {
	done := monitoring.Observe(panelDalName, "add_option", BackendMongo)
	defer func() { done(err) }()

	if err := option.Validate(); err != nil {
		return err
	}

	id, err := nextID(ctx, d.db, "ticket_options", 1)
	if err != nil {
		return err
	}
	option.ID = id
	option.PanelID = panelID

	res, err := d.collection().UpdateOne(ctx, bson.M{"id": panelID}, bson.M{"$push": bson.M{"options": option}})
	if err != nil {
		return storageError("push option", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *mongoPanelDal) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*panelDocument, error) {
	doc := new(panelDocument)
	if err := d.collection().FindOne(ctx, filter, opts...).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storageError("find panel", err)
	}
	return doc, nil
}

func (d *mongoPanelDal) FindPanelByName(ctx context.Context, guildID, name string) (_ *entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "find_panel_by_name", BackendMongo)
	defer func() { done(err) }()

	doc, err := d.findOne(ctx, bson.M{"guild_id": guildID, "panel_name": name})
	if err != nil {
		return nil, err
	}
	return &doc.Panel, nil
}

func (d *mongoPanelDal) GetPanel(ctx context.Context, id int64) (_ *entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "get_panel", BackendMongo)
	defer func() { done(err) }()

	doc, err := d.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, err
	}
	return &doc.Panel, nil
}

func (d *mongoPanelDal) ListPanels(ctx context.Context, guildID string) (_ []*entities.Panel, err error) {
	done := monitoring.Observe(panelDalName, "list_panels", BackendMongo)
	defer func() { done(err) }()

	opts := options.Find().SetSort(bson.M{"panel_name": 1}).SetProjection(bson.M{"options": 0})
	cur, err := d.collection().Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, storageError("list panels", err)
	}
	defer cur.Close(ctx)

	panels := make([]*entities.Panel, 0)
	for cur.Next(ctx) {
		doc := new(panelDocument)
		if err := cur.Decode(doc); err != nil {
			return nil, storageError("decode panel", err)
		}
		panels = append(panels, &doc.Panel)
	}
	if err := cur.Err(); err != nil {
		return nil, storageError("list panels", err)
	}
	return panels, nil
}

func (d *mongoPanelDal) ListOptions(ctx context.Context, panelID int64) (_ []*entities.TicketOption, err error) {
	done := monitoring.Observe(panelDalName, "list_options", BackendMongo)
	defer func() { done(err) }()

	doc, err := d.findOne(ctx, bson.M{"id": panelID})
	if errors.Is(err, ErrNotFound) {
		return make([]*entities.TicketOption, 0), nil
	} else if err != nil {
		return nil, err
	}
	return doc.options(), nil
}

func (d *mongoPanelDal) GetOption(ctx context.Context, id int64) (_ *entities.TicketOption, err error) {
	done := monitoring.Observe(panelDalName, "get_option", BackendMongo)
	defer func() { done(err) }()

	doc, err := d.findOne(ctx, bson.M{"options.id": id})
	if err != nil {
		return nil, err
	}
	for _, o := range doc.options() {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (d *mongoPanelDal) UpdatePanel(ctx context.Context, panel *entities.Panel) (err error) {
	done := monitoring.Observe(panelDalName, "update_panel", BackendMongo)
	defer func() { done(err) }()

	if err := panel.Validate(); err != nil {
		return err
	}

	res, err := d.collection().UpdateOne(ctx, bson.M{"id": panel.ID}, bson.M{"$set": bson.M{
		"embed_title":       panel.EmbedTitle,
		"embed_description": panel.EmbedDescription,
		"embed_color":       panel.EmbedColor,
		"category_id":       panel.CategoryID,
		"log_channel_id":    panel.LogChannelID,
	}})
	if err != nil {
		return storageError("update panel", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *mongoPanelDal) DeletePanel(ctx context.Context, id int64) (err error) {
	done := monitoring.Observe(panelDalName, "delete_panel", BackendMongo)
	defer func() { done(err) }()

	res, err := d.collection().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return storageError("delete panel", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *mongoPanelDal) DeleteAllPanels(ctx context.Context, guildID string) (_ int64, err error) {
	done := monitoring.Observe(panelDalName, "delete_all_panels", BackendMongo)
	defer func() { done(err) }()

	res, err := d.collection().DeleteMany(ctx, bson.M{"guild_id": guildID})
	if err != nil {
		return 0, storageError("delete panels", err)
	}
	return res.DeletedCount, nil
}

// nextID reserves n sequential IDs from the named counter and returns the first.
func nextID(ctx context.Context, db *mongo.Database, name string, n int64) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := db.Collection(collectionCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": n}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, storageError("next id", err)
	}
	return counter.Seq - n + 1, nil
}
