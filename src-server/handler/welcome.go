package handler

import (
	"fmt"
	"log/slog"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Welcome(as *utils.AppState) {
	as.AddMemberJoinHandler(welcomeHandler(as))
}

// No one to answer on a member join, failures only end up in the log.
func welcomeHandler(as *utils.AppState) utils.MemberJoinHandler {
	return func(m *discordgo.GuildMemberAdd) {
		channelID := as.Config.GetWelcomeChannelID()
		if channelID == "" {
			slog.Warn("welcomeHandler: WELCOME_CHANNEL_ID is not set, skipping", "user", m.User.ID)
			return
		}

		startTimer := time.Now()
		if _, err := as.Discord.ChannelMessageSendComplex(channelID, welcomeMessage(as.Config, m.Member)); err != nil {
			slog.Error("welcomeHandler: can't send welcome message", "user", m.User.ID, "channel", channelID, "error", err)
			return
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
	}
}

func welcomeMessage(cfg *utils.Config, member *discordgo.Member) *discordgo.MessageSend {
	content := fmt.Sprintf("Witaj <@%s> na naszym serwerze! 👋", member.User.ID)
	if rules := cfg.GetRulesChannelID(); rules != "" {
		content += fmt.Sprintf("\nZapoznaj się z regulaminem na <#%s>", rules)
	}
	if contest := cfg.GetContestChannelID(); contest != "" {
		content += fmt.Sprintf("\nSprawdź trwający konkurs na <#%s>", contest)
	}

	return &discordgo.MessageSend{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Nowy członek społeczności",
			Description: fmt.Sprintf("Witaj, **%s**!", utils.DisplayName(member)),
			Color:       0x5865F2,
			Thumbnail: &discordgo.MessageEmbedThumbnail{
				URL: member.User.AvatarURL("256"),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{member.User.ID},
		},
	}
}
