package model_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"gildia/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	db := bun.NewDB(rawDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, model.CreateSchema(context.Background(), db))
	return db
}

func TestCreateSchemaTwice(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, model.CreateSchema(context.Background(), db))
}

func TestTicketInsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	// case: missing required fields
	for _, ticket := range []model.Ticket{
		{GuildID: "g", RequesterID: "u", Category: "INNE"},
		{ChannelID: "c", RequesterID: "u", Category: "INNE"},
		{ChannelID: "c", GuildID: "g", Category: "INNE"},
		{ChannelID: "c", GuildID: "g", RequesterID: "u"},
	} {
		assert.Error(t, ticket.Insert(ctx, db))
	}

	// case: generated fields
	ticket := model.Ticket{
		ChannelID:   "chan-1",
		GuildID:     "guild",
		RequesterID: "100",
		Category:    "ZAKUPY",
		Content:     "chcę kupić rangę",
		State:       model.TicketStateClosed,
	}
	require.NoError(t, ticket.Insert(ctx, db))
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, model.TicketStateOpen, ticket.State)
	assert.NotZero(t, ticket.CreatedAt)
	assert.Equal(t, "100", ticket.RequesterName)

	// case: one ticket per channel
	duplicate := model.Ticket{
		ChannelID:   "chan-1",
		GuildID:     "guild",
		RequesterID: "200",
		Category:    "INNE",
	}
	assert.Error(t, duplicate.Insert(ctx, db))
}

func TestTicketLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ticket := model.Ticket{
		ChannelID:     "chan-1",
		GuildID:       "guild",
		RequesterID:   "100",
		RequesterName: "ania",
		Category:      "INNE",
		Nick:          "Ania_PL",
	}
	require.NoError(t, ticket.Insert(ctx, db))

	byChannel, err := model.FindOpenTicketByChannel(ctx, db, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, byChannel.ID)
	assert.Equal(t, "100", byChannel.RequesterID)
	assert.Equal(t, "Ania_PL", byChannel.Nick)

	byRequester, err := model.FindOpenTicketByRequester(ctx, db, "guild", "100")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", byRequester.ChannelID)

	_, err = model.FindOpenTicketByChannel(ctx, db, "nope")
	assert.ErrorIs(t, err, model.ErrTicketNotFound)

	_, err = model.FindOpenTicketByRequester(ctx, db, "other-guild", "100")
	assert.ErrorIs(t, err, model.ErrTicketNotFound)
}

func TestTicketClose(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ticket := model.Ticket{
		ChannelID:   "chan-1",
		GuildID:     "guild",
		RequesterID: "100",
		Category:    "INNE",
	}
	require.NoError(t, ticket.Insert(ctx, db))

	assert.Error(t, ticket.Close(ctx, db, model.TicketStateOpen, "admin"))

	require.NoError(t, ticket.Close(ctx, db, model.TicketStateBanned, "admin"))
	assert.Equal(t, model.TicketStateBanned, ticket.State)
	assert.Equal(t, "admin", ticket.ClosedBy)
	assert.NotZero(t, ticket.ClosedAt)

	// closed tickets are invisible to lookups
	_, err := model.FindOpenTicketByChannel(ctx, db, "chan-1")
	assert.True(t, errors.Is(err, model.ErrTicketNotFound))

	// closing twice loses the race
	err = ticket.Close(ctx, db, model.TicketStateClosed, "someone-else")
	assert.ErrorIs(t, err, model.ErrTicketNotFound)

	stored := new(model.Ticket)
	require.NoError(t, db.NewSelect().Model(stored).Where("id = ?", ticket.ID).Scan(ctx))
	assert.Equal(t, model.TicketStateBanned, stored.State)
	assert.Equal(t, "admin", stored.ClosedBy)
}

func TestListAndCountOpenTickets(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, ticket := range []model.Ticket{
		{ChannelID: "a", GuildID: "guild", RequesterID: "1", Category: "INNE"},
		{ChannelID: "b", GuildID: "guild", RequesterID: "2", Category: "ZAKUPY"},
		{ChannelID: "c", GuildID: "guild", RequesterID: "3", Category: "INNE"},
		{ChannelID: "d", GuildID: "other", RequesterID: "4", Category: "INNE"},
	} {
		require.NoError(t, ticket.Insert(ctx, db))
		if ticket.ChannelID == "c" {
			require.NoError(t, ticket.Close(ctx, db, model.TicketStateClosed, "1"))
		}
	}

	tickets, err := model.ListOpenTickets(ctx, db, "guild")
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	channels := []string{tickets[0].ChannelID, tickets[1].ChannelID}
	assert.ElementsMatch(t, []string{"a", "b"}, channels)

	count, err := model.CountOpenTickets(ctx, db, "guild")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = model.CountOpenTickets(ctx, db, "empty")
	require.NoError(t, err)
	assert.Zero(t, count)
}
