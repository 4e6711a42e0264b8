package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	c := &connection.SQL{
		Driver:       connection.DriverSQLite,
		DSN:          "file::memory:?_foreign_keys=on",
		MaxOpenConns: 1,
	}
	db, err := c.Connect(testLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestStore(t *testing.T) Store {
	t.Helper()

	s, err := NewSQLStore(context.Background(), testLogger(), openTestDB(t))
	require.NoError(t, err)
	return s
}

func testPanel(guild, name string) *entities.Panel {
	return &entities.Panel{
		Name:             name,
		GuildID:          custom.Snowflake(guild),
		LogChannelID:     "555",
		EmbedTitle:       "Support",
		EmbedDescription: "Pick an option",
		EmbedColor:       "3447003",
	}
}

func testOption(name string, questions ...string) *entities.TicketOption {
	return &entities.TicketOption{
		Name:             name,
		RoleIDs:          custom.CommaList{"100", "200"},
		CategoryID:       "777",
		EmbedTitle:       name + " title",
		EmbedDescription: name + " description",
		Questions:        questions,
	}
}

func TestSQLStore_CreatePanel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	panel := testPanel("1", "help")
	err := s.CreatePanel(ctx, panel, []*entities.TicketOption{
		testOption("billing", "Order number?", "What happened?"),
		testOption("bugs"),
	})
	require.NoError(t, err)
	require.NotZero(t, panel.ID)

	got, err := s.FindPanelByName(ctx, "1", "help")
	require.NoError(t, err)
	require.Equal(t, panel.ID, got.ID)
	require.Equal(t, custom.Snowflake("555"), got.LogChannelID)
	require.True(t, got.CategoryID.IsZero())

	options, err := s.ListOptions(ctx, panel.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	require.Equal(t, "billing", options[0].Name)
	require.Equal(t, custom.CommaList{"Order number?", "What happened?"}, options[0].Questions)
	require.Equal(t, custom.CommaList{"100", "200"}, options[0].RoleIDs)
	require.Equal(t, panel.ID, options[1].PanelID)
	require.Empty(t, options[1].Questions)

	option, err := s.GetOption(ctx, options[1].ID)
	require.NoError(t, err)
	require.Equal(t, "bugs", option.Name)
}

func TestSQLStore_CreatePanelRejects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreatePanel(ctx, testPanel("1", "help"), []*entities.TicketOption{testOption("a")}))

	tests := []struct {
		name    string
		panel   *entities.Panel
		options []*entities.TicketOption
		want    error
	}{
		{
			name:    "duplicate name",
			panel:   testPanel("1", "help"),
			options: []*entities.TicketOption{testOption("a")},
			want:    ErrDuplicatePanel,
		},
		{
			name:  "no options",
			panel: testPanel("1", "other"),
			want:  ErrNoOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreatePanel(ctx, tt.panel, tt.options)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("invalid option", func(t *testing.T) {
		bad := testOption("a")
		bad.CategoryID = ""
		err := s.CreatePanel(ctx, testPanel("1", "bad"), []*entities.TicketOption{bad})

		var fieldErr *entities.FieldError
		require.True(t, errors.As(err, &fieldErr))
	})

	t.Run("same name in another guild", func(t *testing.T) {
		err := s.CreatePanel(ctx, testPanel("2", "help"), []*entities.TicketOption{testOption("a")})
		require.NoError(t, err)
	})

	panels, err := s.ListPanels(ctx, "1")
	require.NoError(t, err)
	require.Len(t, panels, 1)
}

func TestSQLStore_UpdatePanel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	panel := testPanel("1", "help")
	require.NoError(t, s.CreatePanel(ctx, panel, []*entities.TicketOption{testOption("a")}))

	panel.EmbedTitle = "New title"
	panel.LogChannelID = "999"
	require.NoError(t, s.UpdatePanel(ctx, panel))

	// Saving the same values again is not a missing panel.
	require.NoError(t, s.UpdatePanel(ctx, panel))

	got, err := s.GetPanel(ctx, panel.ID)
	require.NoError(t, err)
	require.Equal(t, "New title", got.EmbedTitle)
	require.Equal(t, custom.Snowflake("999"), got.LogChannelID)

	missing := testPanel("1", "missing")
	missing.ID = 12345
	require.ErrorIs(t, s.UpdatePanel(ctx, missing), ErrNotFound)
}

func TestSQLStore_DeletePanels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := testPanel("1", "a")
	second := testPanel("1", "b")
	other := testPanel("2", "a")
	for _, p := range []*entities.Panel{first, second, other} {
		require.NoError(t, s.CreatePanel(ctx, p, []*entities.TicketOption{testOption("x")}))
	}

	require.NoError(t, s.DeletePanel(ctx, first.ID))
	require.ErrorIs(t, s.DeletePanel(ctx, first.ID), ErrNotFound)

	options, err := s.ListOptions(ctx, first.ID)
	require.NoError(t, err)
	require.Empty(t, options)

	n, err := s.DeleteAllPanels(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = s.FindPanelByName(ctx, "1", "b")
	require.ErrorIs(t, err, ErrNotFound)

	options, err = s.ListOptions(ctx, second.ID)
	require.NoError(t, err)
	require.Empty(t, options)

	remaining, err := s.ListPanels(ctx, "2")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestSQLStore_DeletePanelsKeepsTickets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	panels := []*entities.Panel{testPanel("1", "a"), testPanel("1", "b")}
	panels[1].LogChannelID = "556"

	var tickets []*entities.Ticket
	for i, p := range panels {
		require.NoError(t, s.CreatePanel(ctx, p, []*entities.TicketOption{testOption("x")}))

		ticket := &entities.Ticket{
			Name:         "x-alice",
			UserID:       "42",
			ChannelID:    custom.Snowflake(fmt.Sprint(900 + i)),
			GuildID:      "1",
			LogChannelID: p.LogChannelID,
			CreatedAt:    custom.NewDatetime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		}
		require.NoError(t, s.CreateTicket(ctx, ticket))
		tickets = append(tickets, ticket)
	}

	require.NoError(t, s.DeletePanel(ctx, panels[0].ID))
	_, err := s.DeleteAllPanels(ctx, "1")
	require.NoError(t, err)

	for i, want := range tickets {
		got, err := s.GetTicket(ctx, want.ID)
		require.NoError(t, err)
		require.Equal(t, panels[i].LogChannelID, got.LogChannelID)
		require.False(t, got.Closed)

		open, err := s.FindOpenTicketByChannel(ctx, want.ChannelID.String())
		require.NoError(t, err)
		require.Equal(t, want.ID, open.ID)
	}
}

func TestSQLStore_TicketLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := &entities.Ticket{
		Name:         "billing-alice",
		UserID:       "42",
		ChannelID:    "900",
		GuildID:      "1",
		LogChannelID: "555",
		CreatedAt:    custom.NewDatetime(created),
	}
	require.NoError(t, s.CreateTicket(ctx, ticket))
	require.NotZero(t, ticket.ID)

	dup := *ticket
	dup.ID = 0
	require.ErrorIs(t, s.CreateTicket(ctx, &dup), ErrTicketExists)

	open, err := s.FindOpenTicketByChannel(ctx, "900")
	require.NoError(t, err)
	require.Equal(t, ticket.ID, open.ID)
	require.Equal(t, custom.Snowflake("42"), open.UserID)
	require.True(t, created.Equal(open.CreatedAt.Time()))
	require.Nil(t, open.ClosedAt)

	closedAt := created.Add(time.Hour)
	require.NoError(t, s.CloseTicket(ctx, ticket.ID, "done", "[t] a: hi", closedAt))
	require.ErrorIs(t, s.CloseTicket(ctx, ticket.ID, "again", "", closedAt), ErrTicketClosed)
	require.ErrorIs(t, s.CloseTicket(ctx, 9999, "", "", closedAt), ErrNotFound)

	_, err = s.FindOpenTicketByChannel(ctx, "900")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, got.Closed)
	require.Equal(t, "done", got.Reason)
	require.Equal(t, "[t] a: hi", got.Transcript)
	require.NotNil(t, got.ClosedAt)
	require.True(t, closedAt.Equal(got.ClosedAt.Time()))

	// A closed ticket frees its channel for a new one.
	reopened := &entities.Ticket{Name: "billing-alice", UserID: "42", ChannelID: "900", GuildID: "1"}
	require.NoError(t, s.CreateTicket(ctx, reopened))
}

func TestSQLStore_Ping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
	require.Equal(t, BackendSQL, s.Backend())
}
