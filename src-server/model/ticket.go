package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type TicketState string

const (
	TicketStateOpen   TicketState = "open"
	TicketStateClosed TicketState = "closed"
	TicketStateBanned TicketState = "banned"
)

// ErrTicketNotFound means there is no open ticket for the lookup key.
var ErrTicketNotFound = errors.New("ticket not found")

// One row per ticket channel. Admin actions find the requester through
// channel_id, never through the channel name.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string      `bun:"id,pk"`                     // generated
	ChannelID     string      `bun:"channel_id,notnull,unique"` // required
	GuildID       string      `bun:"guild_id,notnull"`          // required
	RequesterID   string      `bun:"requester_id,notnull"`      // required
	RequesterName string      `bun:"requester_name,notnull"`    // required
	Category      string      `bun:"category,notnull"`          // required
	Content       string      `bun:"content"`
	Nick          string      `bun:"nick"`
	Extra         string      `bun:"extra"`
	State         TicketState `bun:"state,notnull"`

	CreatedAt int64  `bun:"created_at,notnull"`
	ClosedAt  int64  `bun:"closed_at"`
	ClosedBy  string `bun:"closed_by"`
}

// Insert stores a new open ticket, filling in id, state and creation time.
func (t *Ticket) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case t.ChannelID == "":
		return fmt.Errorf("(*Ticket).Insert: channel id is blank")
	case t.GuildID == "":
		return fmt.Errorf("(*Ticket).Insert: guild id is blank")
	case t.RequesterID == "":
		return fmt.Errorf("(*Ticket).Insert: requester id is blank")
	case t.Category == "":
		return fmt.Errorf("(*Ticket).Insert: category is blank")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.RequesterName == "" {
		t.RequesterName = t.RequesterID
	}
	t.State = TicketStateOpen
	t.CreatedAt = time.Now().UTC().Unix()

	if _, err := db.NewInsert().
		Model(t).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Ticket).Insert: %w", err)
	}
	return nil
}

// Close moves an open ticket into state (closed or banned). It returns
// ErrTicketNotFound when someone else closed the ticket first.
func (t *Ticket) Close(ctx context.Context, db bun.IDB, state TicketState, closedBy string) error {
	if state == TicketStateOpen {
		return fmt.Errorf("(*Ticket).Close: can't close into state %q", state)
	}

	closed := *t
	closed.State = state
	closed.ClosedAt = time.Now().UTC().Unix()
	closed.ClosedBy = closedBy

	res, err := db.NewUpdate().
		Model(&closed).
		Column("state", "closed_at", "closed_by").
		Where("id = ?", t.ID).
		Where("state = ?", TicketStateOpen).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("(*Ticket).Close: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("(*Ticket).Close: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("(*Ticket).Close: %w", ErrTicketNotFound)
	}

	*t = closed
	return nil
}

func FindOpenTicketByChannel(ctx context.Context, db bun.IDB, channelID string) (*Ticket, error) {
	ticket := new(Ticket)
	if err := db.NewSelect().
		Model(ticket).
		Where("channel_id = ?", channelID).
		Where("state = ?", TicketStateOpen).
		Limit(1).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("FindOpenTicketByChannel: %w", err)
	}
	return ticket, nil
}

func FindOpenTicketByRequester(ctx context.Context, db bun.IDB, guildID, requesterID string) (*Ticket, error) {
	ticket := new(Ticket)
	if err := db.NewSelect().
		Model(ticket).
		Where("guild_id = ?", guildID).
		Where("requester_id = ?", requesterID).
		Where("state = ?", TicketStateOpen).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("FindOpenTicketByRequester: %w", err)
	}
	return ticket, nil
}

// oldest first
func ListOpenTickets(ctx context.Context, db bun.IDB, guildID string) ([]Ticket, error) {
	tickets := make([]Ticket, 0)
	if err := db.NewSelect().
		Model(&tickets).
		Where("guild_id = ?", guildID).
		Where("state = ?", TicketStateOpen).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListOpenTickets: %w", err)
	}
	return tickets, nil
}

func CountOpenTickets(ctx context.Context, db bun.IDB, guildID string) (int, error) {
	count, err := db.NewSelect().
		Model((*Ticket)(nil)).
		Where("guild_id = ?", guildID).
		Where("state = ?", TicketStateOpen).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountOpenTickets: %w", err)
	}
	return count, nil
}
