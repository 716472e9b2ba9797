package discordtest

import (
	"context"
	"testing"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

const (
	GuildID       = "900000000000000001"
	AdminRoleID   = "800000000000000001"
	VerifyRoleID  = "800000000000000002"
	TargetRoleID  = "800000000000000003"
	LogChannelID  = "700000000000000001"
	WelcomeChanID = "700000000000000002"
	RulesChanID   = "700000000000000003"
	ContestChanID = "700000000000000004"
	TicketLogID   = "700000000000000005"
	TicketParent  = "700000000000000006"
	PanelChanID   = "700000000000000007"
)

// NewAppState builds an AppState backed by an in-memory sqlite store and a
// fresh FakeDiscord. Every configurable channel and role is set; override
// entries replace the defaults, an empty value unsets the key.
func NewAppState(t testing.TB, override map[string]string) (*utils.AppState, *FakeDiscord) {
	t.Helper()

	settings := map[string]string{
		"DATABASE_URL":          "sqlite://:memory:",
		"DISCORD_GUILD_ID":      GuildID,
		"DISCORD_APP_TOKEN":     "token-for-tests",
		"DISCORD_CLIENT_ID":     "600000000000000001",
		"VERIFY_ROLE_ID":        VerifyRoleID,
		"VERIFY_LOG_CHANNEL_ID": LogChannelID,
		"WELCOME_CHANNEL_ID":    WelcomeChanID,
		"RULES_CHANNEL_ID":      RulesChanID,
		"CONTEST_CHANNEL_ID":    ContestChanID,
		"TICKET_ADMIN_ROLE_ID":  AdminRoleID,
		"TICKET_CATEGORY_ID":    TicketParent,
		"TICKET_LOG_CHANNEL_ID": TicketLogID,
		"PANEL_ADMIN_ROLE_ID":   AdminRoleID,
		"PANEL_TARGET_ROLE_ID":  TargetRoleID,
	}
	for k, v := range override {
		settings[k] = v
	}

	v := utils.NewViper()
	for k, value := range settings {
		v.Set(k, value)
	}
	cfg, err := utils.NewConfig(v)
	require.NoError(t, err)

	db, err := utils.OpenDB(cfg.GetDatabaseURL())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), db))

	fake := NewFakeDiscord()
	return utils.NewAppState(cfg, db, fake), fake
}

func Member(id, username string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		GuildID: GuildID,
		User: &discordgo.User{
			ID:            id,
			Username:      username,
			Discriminator: "0",
		},
		Roles: roles,
	}
}

func Command(member *discordgo.Member, channelID, name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "interaction-" + name,
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   GuildID,
		ChannelID: channelID,
		Member:    member,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: name,
		},
	}}
}

func Button(member *discordgo.Member, channelID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "interaction-" + customID,
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   GuildID,
		ChannelID: channelID,
		Member:    member,
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}}
}

// ModalSubmit lays values out one text input per row, the way Discord
// delivers them.
func ModalSubmit(member *discordgo.Member, channelID, customID string, values map[string]string) *discordgo.InteractionCreate {
	rows := make([]discordgo.MessageComponent, 0, len(values))
	for inputID, value := range values {
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: inputID, Value: value},
			},
		})
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "interaction-" + customID,
		Type:      discordgo.InteractionModalSubmit,
		GuildID:   GuildID,
		ChannelID: channelID,
		Member:    member,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}}
}
