package handler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gildia/src-server/discordtest"
	"gildia/src-server/handler"
	"gildia/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminPanelDenied(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.AdminPanel(as)

	as.DispatchInteraction(discordtest.Command(discordtest.Member("1", "user", discordtest.TargetRoleID), "chan", "panel"))
	assert.Contains(t, dg.LastReply(), "Nie masz uprawnień")
	assert.Equal(t, discordgo.MessageFlagsEphemeral, dg.LastResponse().Data.Flags)
	assert.Zero(t, dg.MemberListCalls)
	assert.Empty(t, dg.Edits)
}

func TestAdminPanelCounts(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.AdminPanel(as)

	// more than one page of members
	for n := 0; n < 2500; n++ {
		var roles []string
		if n%10 == 0 {
			roles = append(roles, discordtest.TargetRoleID)
		}
		dg.AddMember(discordtest.Member(fmt.Sprintf("1%017d", n), fmt.Sprintf("user%d", n), roles...))
	}
	ticket := model.Ticket{ChannelID: "c", GuildID: discordtest.GuildID, RequesterID: "1", Category: "INNE"}
	require.NoError(t, ticket.Insert(context.Background(), as.BunDB))

	admin := discordtest.Member("2", "admin", discordtest.AdminRoleID)
	as.DispatchInteraction(discordtest.Command(admin, "chan", "panel"))

	require.Len(t, dg.Responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, dg.Responses[0].Type)
	assert.Equal(t, 3, dg.MemberListCalls)

	require.Len(t, dg.Edits, 1)
	embeds := *dg.Edits[0].Embeds
	require.Len(t, embeds, 1)
	fields := embeds[0].Fields
	assert.Equal(t, "2500", fields[0].Value)
	assert.Equal(t, "<@&"+discordtest.TargetRoleID+">: 250", fields[1].Value)
	assert.Equal(t, "1", fields[2].Value)
}

func TestAdminPanelMemberListFails(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.AdminPanel(as)
	dg.Fail["GuildMembers"] = errors.New("missing intent")

	as.DispatchInteraction(discordtest.Command(discordtest.Member("2", "admin", discordtest.AdminRoleID), "chan", "panel"))
	require.Len(t, dg.Edits, 1)
	assert.Contains(t, *dg.Edits[0].Content, "Nie udało się")
}

func TestAdminPanelDeferFailureIsCounted(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.AdminPanel(as)
	dg.Fail["InteractionRespond"] = errors.New("unknown interaction")

	as.DispatchInteraction(discordtest.Command(discordtest.Member("2", "admin", discordtest.AdminRoleID), "chan", "panel"))
	assert.Equal(t, 1.0, testutil.ToFloat64(as.MetricChans.Interactions.WithLabelValues("panel", "error")))
	assert.Zero(t, dg.MemberListCalls)
}

func TestPing(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.Ping(as)

	as.DispatchInteraction(discordtest.Command(discordtest.Member("1", "user"), "chan", "ping"))
	resp := dg.LastResponse()
	require.NotNil(t, resp)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Pong!", resp.Data.Embeds[0].Title)
	assert.Equal(t, "42ms", resp.Data.Embeds[0].Fields[1].Value)
}
