package ticket_handler

import (
	"fmt"
	"log/slog"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func ban(as *utils.AppState) {
	as.AddAppCmdHandler(BanButtonID, banHandler(as))
}

// banHandler closes the ticket as banned, bans the requester and removes
// the channel. The ban is only sent once the ticket is claimed, so a ticket
// someone else closed meanwhile bans nobody.
func banHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		admin := utils.InteractionUser(i)
		if admin == nil || !isTicketAdmin(as, i) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		ticket, ok, err := loadTicket(as, i, "ticket_handler:ban")
		if !ok {
			return err
		}

		startTimer := time.Now()
		if err := utils.InteractRespHiddenDefer(as.Discord, i); err != nil {
			return fmt.Errorf("ticket_handler:ban: can't send defer message: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		if claimed, err := claimTicket(as, i, ticket, model.TicketStateBanned, admin); !claimed {
			return err
		}

		msg := fmt.Sprintf("<@%s> został zbanowany, ticket zamknięty.", ticket.RequesterID)
		reason := fmt.Sprintf("Ticket %s, ban nadany przez %s", ticket.ID, admin.Username)
		if err := as.Discord.GuildBanCreateWithReason(ticket.GuildID, ticket.RequesterID, reason, 0); err != nil {
			// the user may have left already, the ticket stays closed
			slog.Warn("ticket_handler:ban: can't ban requester", "user", ticket.RequesterID, "error", err)
			msg = fmt.Sprintf("Nie udało się zbanować <@%s>, ticket zamknięty.", ticket.RequesterID)
		}
		postTranscript(as, ticket, admin)

		editReply(as, i, msg)
		deleteTicketChannel(as, ticket)
		return nil
	}
}
