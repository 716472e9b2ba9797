package ticket_handler

import (
	"fmt"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func panel(as *utils.AppState) {
	as.AddAppCmdHandler(PanelCommandID, panelHandler(as))
	as.AddAppCmdInfo(PanelCommandID, &discordgo.ApplicationCommand{
		Name:        PanelCommandID,
		Description: "Opublikuj przycisk otwierania ticketów na tym kanale.",
	})
}

func panelHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if !isTicketAdmin(as, i) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		startTimer := time.Now()
		if _, err := as.Discord.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🎫 Centrum pomocy",
				Description: "Masz pytanie albo chcesz coś kupić? Kliknij przycisk poniżej i wypełnij formularz.\n\nKategorie: **INNE**, **ZAKUPY**",
				Color:       0x5865F2,
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Otwórz ticket",
							Style:    discordgo.PrimaryButton,
							CustomID: OpenButtonID,
							Emoji:    &discordgo.ComponentEmoji{Name: "📩"},
						},
					},
				},
			},
		}); err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, "Nie udało się opublikować panelu ticketów.")
			return fmt.Errorf("ticket_handler:panel: can't send panel: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		utils.InteractRespHiddenReply(as.Discord, i, "Panel ticketów opublikowany.")
		return nil
	}
}
