package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/google/uuid"
)

// MaxCloseHours is the longest delay a close request may run for, one year.
const MaxCloseHours = 24 * 365

// RequestClose asks the creator of the channel's ticket to confirm its
// closure. With hours above zero the request lapses after that many hours.
func (c *Controller) RequestClose(ctx context.Context, channelID string, requester User, reason string, hours int) (*CloseRequest, error) {
	if hours < 0 || hours > MaxCloseHours {
		return nil, ErrInvalidHours
	}

	ticket, err := c.openTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}

	req := CloseRequest{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		ChannelID: channelID,
		CreatorID: ticket.UserID.String(),
		Requester: requester,
		Reason:    reason,
	}

	var timer clock.Timer
	if hours > 0 {
		d := time.Duration(hours) * time.Hour
		req.ExpiresAt = c.clock.Now().Add(d)
		id := req.ID
		timer = c.clock.AfterFunc(d, func() {
			c.expire(id)
		})
	}
	c.requests.add(req, timer)
	CloseRequests.WithLabelValues(outcomeRequested).Inc()

	msg := Message{
		Content: "<@" + req.CreatorID + ">",
		Embeds: []Embed{{
			Title:       "Ticket Close Request",
			Description: fmt.Sprintf("%s has requested to close this ticket.\n\n**Reason:** %s", requester.Mention(), reason),
			Color:       colorBlue,
			Timestamp:   c.clock.Now(),
		}},
		Buttons: []Button{{Label: "Confirm Close", CustomID: ConfirmID(req.ID)}},
	}
	if !req.ExpiresAt.IsZero() {
		msg.Embeds[0].Description += fmt.Sprintf("\n\nThis request expires <t:%d:R>.", req.ExpiresAt.Unix())
	}

	if err := c.platform.Send(ctx, channelID, msg); err != nil {
		c.requests.take(req.ID)
		return nil, fmt.Errorf("error sending close request: %w", err)
	}
	return &req, nil
}

func (c *Controller) expire(id string) {
	req, ok := c.requests.lapse(id)
	if !ok {
		return
	}
	CloseRequests.WithLabelValues(outcomeExpired).Inc()

	if err := c.platform.Send(context.Background(), req.ChannelID, Message{Content: messages.TicketRequestExpiredNotice}); err != nil {
		c.l.Warn("Error announcing expired close request",
			slog.String(logging.KeyChannel, req.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// ConfirmClose closes the ticket of a close request. Only the ticket creator
// may confirm. A refused confirmation leaves the request pending.
func (c *Controller) ConfirmClose(ctx context.Context, requestID string, actor User) (*entities.Ticket, error) {
	req, ok := c.requests.get(requestID)
	if !ok {
		return nil, ErrRequestExpired
	}
	if actor.ID != req.CreatorID {
		CloseRequests.WithLabelValues(outcomeRefused).Inc()
		return nil, ErrNotCreator
	}

	// The request stays pending until the ticket is closed, so a failed
	// closure can be confirmed again.
	if _, ok := c.requests.claim(requestID); !ok {
		return nil, ErrRequestExpired
	}

	ticket, err := c.openTicket(ctx, req.ChannelID)
	if err == nil {
		err = c.close(ctx, ticket, actor, req.Reason, false)
	}
	if err != nil {
		if c.requests.release(requestID) {
			c.expire(requestID)
		}
		return nil, err
	}

	CloseRequests.WithLabelValues(outcomeConfirmed).Inc()
	return ticket, nil
}

// ForceClose closes the channel's ticket without asking the creator.
func (c *Controller) ForceClose(ctx context.Context, channelID string, closer User, reason string) (*entities.Ticket, error) {
	ticket, err := c.openTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := c.close(ctx, ticket, closer, reason, true); err != nil {
		return nil, err
	}
	return ticket, nil
}

// close captures the transcript, stores the closure and sends the notices.
// The channel itself is left for the caller to delete.
func (c *Controller) close(ctx context.Context, ticket *entities.Ticket, closer User, reason string, forced bool) error {
	l := c.l.With(
		slog.Int64(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyChannel, ticket.ChannelID.String()),
	)

	history, err := c.platform.History(ctx, ticket.ChannelID.String())
	if err != nil {
		return fmt.Errorf("error reading ticket history: %w", err)
	}
	transcript := RenderTranscript(history)

	closedAt := c.clock.Now()
	if err := c.store.CloseTicket(ctx, ticket.ID, reason, transcript, closedAt); err != nil {
		return fmt.Errorf("error closing ticket: %w", err)
	}
	stamp := custom.NewDatetime(closedAt)
	ticket.Closed = true
	ticket.Reason = reason
	ticket.Transcript = transcript
	ticket.ClosedAt = &stamp

	c.requests.dropTicket(ticket.ID)

	method := methodConfirmed
	title := "Ticket Closed"
	color := colorBlue
	verb := "closed"
	if forced {
		method = methodForced
		title = "Ticket Forcefully Closed"
		color = colorRed
		verb = "forcefully closed"
	}
	TicketsClosed.WithLabelValues(method).Inc()
	l.Info("Ticket closed", slog.String("method", method))

	file := File{
		Name:    fmt.Sprintf("transcript-%s.txt", ticket.Name),
		Content: []byte(transcript),
	}

	if !ticket.LogChannelID.IsZero() {
		logMsg := Message{
			Embeds: []Embed{{
				Title:       title,
				Description: fmt.Sprintf("**Ticket:** %s\n**Closed by:** %s\n**Reason:** %s", ticket.Name, closer.Mention(), reason),
				Color:       color,
				Timestamp:   closedAt,
			}},
			Files: []File{file},
		}
		if err := c.platform.Send(ctx, ticket.LogChannelID.String(), logMsg); err != nil {
			l.Error("Error sending ticket log", slog.String(logging.KeyError, err.Error()))
		}
	}

	guildName, err := c.platform.GuildName(ctx, ticket.GuildID.String())
	if err != nil {
		guildName = "the server"
	}
	dm := Message{
		Embeds: []Embed{{
			Title:       title,
			Description: fmt.Sprintf("Your ticket in **%s** has been %s by %s\n\n**Reason:** %s", guildName, verb, closer.Mention(), reason),
			Color:       color,
			Timestamp:   closedAt,
		}},
		Files: []File{file},
	}
	if err := c.platform.SendDM(ctx, ticket.UserID.String(), dm); err != nil {
		// Users may refuse direct messages.
		l.Debug("Could not message ticket creator", slog.String(logging.KeyError, err.Error()))
	}

	return nil
}
