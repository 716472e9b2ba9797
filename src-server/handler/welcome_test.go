package handler_test

import (
	"errors"
	"testing"

	"gildia/src-server/discordtest"
	"gildia/src-server/handler"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	as, dg := discordtest.NewAppState(t, nil)
	handler.Welcome(as)

	member := discordtest.Member("100000000000000001", "ania")
	member.Nick = "Ania"
	as.DispatchMemberJoin(&discordgo.GuildMemberAdd{Member: member})

	sent := dg.MessagesTo(discordtest.WelcomeChanID)
	require.Len(t, sent, 1)
	msg := sent[0].Message
	assert.Contains(t, msg.Content, "Witaj")
	assert.Contains(t, msg.Content, "<@100000000000000001>")
	assert.Contains(t, msg.Content, "<#"+discordtest.RulesChanID+">")
	assert.Contains(t, msg.Content, "<#"+discordtest.ContestChanID+">")
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "Ania")
	assert.NotEmpty(t, msg.Embeds[0].Thumbnail.URL)
}

func TestWelcomeFailuresStaySilent(t *testing.T) {
	t.Run("send fails", func(t *testing.T) {
		as, dg := discordtest.NewAppState(t, nil)
		handler.Welcome(as)
		dg.Fail["ChannelMessageSend"] = errors.New("missing access")

		as.DispatchMemberJoin(&discordgo.GuildMemberAdd{Member: discordtest.Member("1", "ania")})
		assert.Empty(t, dg.Messages)
		assert.Empty(t, dg.Responses)
	})

	t.Run("no welcome channel", func(t *testing.T) {
		as, dg := discordtest.NewAppState(t, map[string]string{"WELCOME_CHANNEL_ID": ""})
		handler.Welcome(as)

		as.DispatchMemberJoin(&discordgo.GuildMemberAdd{Member: discordtest.Member("1", "ania")})
		assert.Empty(t, dg.Messages)
	})
}
