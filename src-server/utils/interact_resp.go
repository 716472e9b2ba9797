package utils

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// =========================================================
// Pre-built discordgo interaction responses for convenience
// =========================================================

// Send a hidden reply to the interaction.
// For a visible non-reply, use `ChannelMessageSend(i.ChannelID, "content")`
func InteractRespHiddenReply(dg Discord, i *discordgo.InteractionCreate, content string) {
	if err := dg.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	}); err != nil {
		slog.Warn("can't send hidden reply", "error", err)
	}
}

// Same as InteractRespHiddenReply, with embeds instead of text.
func InteractRespHiddenEmbeds(dg Discord, i *discordgo.InteractionCreate, embeds ...*discordgo.MessageEmbed) {
	if err := dg.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: embeds,
		},
	}); err != nil {
		slog.Warn("can't send hidden embeds", "error", err)
	}
}

// Acknowledge now, answer later with InteractRespEdit. The final answer is
// hidden as well.
func InteractRespHiddenDefer(dg Discord, i *discordgo.InteractionCreate) error {
	return dg.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// Edit the deferred message.
func InteractRespEdit(dg Discord, i *discordgo.InteractionCreate, edit *discordgo.WebhookEdit) {
	if _, err := dg.InteractionResponseEdit(i.Interaction, edit); err != nil {
		slog.Warn("can't edit deferred message", "error", err)
	}
}

// InteractionUser returns whoever triggered the interaction, inside a guild
// or in DMs.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	switch {
	case i == nil || i.Interaction == nil:
		return nil
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User
	default:
		return i.User
	}
}

// InteractionHasRole reports whether the guild member behind i holds roleID.
// An unset role never matches.
func InteractionHasRole(i *discordgo.InteractionCreate, roleID string) bool {
	if i == nil || i.Interaction == nil || i.Member == nil {
		return false
	}
	return HasRole(i.Member.Roles, roleID)
}

func HasRole(roles []string, roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, role := range roles {
		if role == roleID {
			return true
		}
	}
	return false
}
