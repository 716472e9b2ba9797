package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord is the part of the Discord REST API the handlers talk to. The
// production implementation wraps a *discordgo.Session; tests plug in a fake.
type Discord interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	InteractionResponseEdit(interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error)

	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error)

	GuildMember(guildID, userID string) (*discordgo.Member, error)
	GuildMembers(guildID, after string, limit int) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int) error

	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	ChannelDelete(channelID string) (*discordgo.Channel, error)
	UserChannelCreate(recipientID string) (*discordgo.Channel, error)

	HeartbeatLatency() time.Duration
}

type dgSession struct {
	s *discordgo.Session
}

// NewDiscord adapts a discordgo session to the Discord interface.
func NewDiscord(s *discordgo.Session) Discord {
	return &dgSession{s: s}
}

func (d *dgSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return d.s.InteractionRespond(interaction, resp)
}

func (d *dgSession) InteractionResponseEdit(interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return d.s.InteractionResponseEdit(interaction, edit)
}

func (d *dgSession) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	return d.s.ChannelMessageSend(channelID, content)
}

func (d *dgSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return d.s.ChannelMessageSendComplex(channelID, data)
}

func (d *dgSession) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	return d.s.ChannelMessages(channelID, limit, "", "", "")
}

func (d *dgSession) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	return d.s.GuildMember(guildID, userID)
}

func (d *dgSession) GuildMembers(guildID, after string, limit int) ([]*discordgo.Member, error) {
	return d.s.GuildMembers(guildID, after, limit)
}

func (d *dgSession) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (d *dgSession) GuildBanCreateWithReason(guildID, userID, reason string, days int) error {
	return d.s.GuildBanCreateWithReason(guildID, userID, reason, days)
}

func (d *dgSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return d.s.GuildChannelCreateComplex(guildID, data)
}

func (d *dgSession) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	return d.s.ChannelDelete(channelID)
}

func (d *dgSession) UserChannelCreate(recipientID string) (*discordgo.Channel, error) {
	return d.s.UserChannelCreate(recipientID)
}

func (d *dgSession) HeartbeatLatency() time.Duration {
	return d.s.HeartbeatLatency()
}
