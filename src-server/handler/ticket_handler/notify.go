package ticket_handler

import (
	"fmt"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func notify(as *utils.AppState) {
	as.AddAppCmdHandler(NotifyButtonID, notifyHandler(as))
}

// notifyHandler DMs the requester a pointer back to their ticket.
func notifyHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if !isTicketAdmin(as, i) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		ticket, ok, err := loadTicket(as, i, "ticket_handler:notify")
		if !ok {
			return err
		}

		dm, err := as.Discord.UserChannelCreate(ticket.RequesterID)
		if err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, "Nie udało się wysłać powiadomienia.")
			return fmt.Errorf("ticket_handler:notify: can't open DM with %s: %w", ticket.RequesterID, err)
		}

		startTimer := time.Now()
		if _, err := as.Discord.ChannelMessageSend(dm.ID, fmt.Sprintf(
			"👋 Administracja czeka na Twoją odpowiedź w tickecie <#%s>.", ticket.ChannelID,
		)); err != nil {
			// closed DMs are the user's choice
			utils.InteractRespHiddenReply(as.Discord, i, "Użytkownik ma zablokowane wiadomości prywatne.")
			return nil
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		as.MetricChans.Tickets.WithLabelValues("notified").Inc()

		utils.InteractRespHiddenReply(as.Discord, i, fmt.Sprintf("Powiadomiono <@%s>.", ticket.RequesterID))
		return nil
	}
}
