package ticket_handler

import (
	"fmt"
	"strings"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// an embed description holds up to 4096 characters
const listMaxLines = 40

func list(as *utils.AppState) {
	as.AddAppCmdHandler(ListCommandID, listHandler(as))
	as.AddAppCmdInfo(ListCommandID, &discordgo.ApplicationCommand{
		Name:        ListCommandID,
		Description: "Pokaż otwarte tickety.",
	})
}

func listHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if !isTicketAdmin(as, i) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		ctx, cancel := as.InteractionContext()
		defer cancel()

		startTimer := time.Now()
		tickets, err := model.ListOpenTickets(ctx, as.BunDB, i.GuildID)
		if err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, msgGenericFailure)
			return fmt.Errorf("ticket_handler:list: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)

		if len(tickets) == 0 {
			utils.InteractRespHiddenReply(as.Discord, i, "Brak otwartych ticketów.")
			return nil
		}

		lines := make([]string, 0, min(len(tickets), listMaxLines)+1)
		for idx, ticket := range tickets {
			if idx == listMaxLines {
				lines = append(lines, fmt.Sprintf("…i %d więcej", len(tickets)-listMaxLines))
				break
			}
			lines = append(lines, fmt.Sprintf("%s <#%s> <@%s> <t:%d:R>",
				categoryGlyphs[ticket.Category], ticket.ChannelID, ticket.RequesterID, ticket.CreatedAt))
		}

		utils.InteractRespHiddenEmbeds(as.Discord, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Otwarte tickety (%d)", len(tickets)),
			Description: strings.Join(lines, "\n"),
			Color:       0x5865F2,
		})
		return nil
	}
}
