package handler

import (
	"fmt"
	"log/slog"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	VerifyButtonID = "verify"

	msgVerifyFailed = "Nie udało się zweryfikować konta, spróbuj ponownie później."
)

func Verify(as *utils.AppState) {
	as.AddAppCmdHandler(VerifyButtonID, verifyHandler(as))

	panelID := "verify-panel"
	as.AddAppCmdHandler(panelID, verifyPanelHandler(as))
	as.AddAppCmdInfo(panelID, &discordgo.ApplicationCommand{
		Name:        panelID,
		Description: "Opublikuj przycisk weryfikacji na tym kanale.",
	})
}

func verifyHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		roleID := as.Config.GetVerifyRoleID()
		user := utils.InteractionUser(i)
		switch {
		case roleID == "":
			slog.Error("verifyHandler: VERIFY_ROLE_ID is not set")
			utils.InteractRespHiddenReply(as.Discord, i, msgVerifyFailed)
			return nil
		case user == nil || i.GuildID == "":
			utils.InteractRespHiddenReply(as.Discord, i, "Weryfikacja działa tylko na serwerze.")
			return nil
		}

		// the interaction payload may be stale, ask for the current roles
		startTimer := time.Now()
		member, err := as.Discord.GuildMember(i.GuildID, user.ID)
		if err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, msgVerifyFailed)
			return fmt.Errorf("verifyHandler: can't fetch member %s: %w", user.ID, err)
		}
		if utils.HasRole(member.Roles, roleID) {
			utils.InteractRespHiddenReply(as.Discord, i, "Jesteś już zweryfikowany.")
			return nil
		}

		if err := as.Discord.GuildMemberRoleAdd(i.GuildID, user.ID, roleID); err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, msgVerifyFailed)
			return fmt.Errorf("verifyHandler: can't add role %s to %s: %w", roleID, user.ID, err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		as.MetricChans.Verified.Inc()

		utils.InteractRespHiddenReply(as.Discord, i, "Weryfikacja zakończona, witamy na serwerze!")

		if logChannelID := as.Config.GetVerifyLogChannelID(); logChannelID != "" {
			if _, err := as.Discord.ChannelMessageSend(
				logChannelID,
				fmt.Sprintf("✅ <@%s> (%s) został zweryfikowany.", user.ID, user.Username),
			); err != nil {
				slog.Warn("verifyHandler: can't post to the log channel", "channel", logChannelID, "error", err)
			}
		}
		return nil
	}
}

func verifyPanelHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if !utils.InteractionHasRole(i, as.Config.GetPanelAdminRoleID()) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		if _, err := as.Discord.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Weryfikacja",
				Description: "Kliknij przycisk poniżej, aby uzyskać dostęp do serwera.",
				Color:       0x57F287,
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Zweryfikuj",
							Style:    discordgo.SuccessButton,
							CustomID: VerifyButtonID,
							Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
						},
					},
				},
			},
		}); err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, "Nie udało się opublikować panelu weryfikacji.")
			return fmt.Errorf("verifyPanelHandler: can't send panel: %w", err)
		}

		utils.InteractRespHiddenReply(as.Discord, i, "Panel weryfikacji opublikowany.")
		return nil
	}
}
