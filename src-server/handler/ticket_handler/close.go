package ticket_handler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func closeTicket(as *utils.AppState) {
	as.AddAppCmdHandler(CloseButtonID, closeHandler(as))
	as.AddChannelDeleteHandler(channelGoneHandler(as))
}

// closeHandler lets the requester or a ticket admin close the ticket. The
// channel is archived into the log channel then deleted.
func closeHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		ticket, ok, err := loadTicket(as, i, "ticket_handler:close")
		if !ok {
			return err
		}

		user := utils.InteractionUser(i)
		if user == nil || (user.ID != ticket.RequesterID && !isTicketAdmin(as, i)) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		// the transcript upload can take longer than Discord's 3s
		startTimer := time.Now()
		if err := utils.InteractRespHiddenDefer(as.Discord, i); err != nil {
			return fmt.Errorf("ticket_handler:close: can't send defer message: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		if claimed, err := claimTicket(as, i, ticket, model.TicketStateClosed, user); !claimed {
			return err
		}
		postTranscript(as, ticket, user)

		editReply(as, i, "Ticket zamknięty, kanał zostanie usunięty.")
		deleteTicketChannel(as, ticket)
		return nil
	}
}

// claimTicket moves the ticket out of open in the store. Only the caller
// that wins may act on the requester. claimed is false when the caller must
// stop, the deferred reply has been answered then.
func claimTicket(as *utils.AppState, i *discordgo.InteractionCreate, ticket *model.Ticket, state model.TicketState, actor *discordgo.User) (claimed bool, err error) {
	ctx, cancel := as.InteractionContext()
	defer cancel()

	startTimer := time.Now()
	err = ticket.Close(ctx, as.BunDB, state, actor.ID)
	switch {
	case errors.Is(err, model.ErrTicketNotFound):
		editReply(as, i, msgTicketNotFound)
		return false, nil
	case err != nil:
		editReply(as, i, msgGenericFailure)
		return false, fmt.Errorf("claimTicket: %w", err)
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
	as.MetricChans.Tickets.WithLabelValues(string(state)).Inc()
	return true, nil
}

func editReply(as *utils.AppState, i *discordgo.InteractionCreate, content string) {
	utils.InteractRespEdit(as.Discord, i, &discordgo.WebhookEdit{Content: &content})
}

func deleteTicketChannel(as *utils.AppState, ticket *model.Ticket) {
	if _, err := as.Discord.ChannelDelete(ticket.ChannelID); err != nil {
		slog.Warn("deleteTicketChannel: can't delete ticket channel", "channel", ticket.ChannelID, "error", err)
	}
}

// channelGoneHandler closes the ticket of a channel someone deleted by hand,
// so the requester can open a new one.
func channelGoneHandler(as *utils.AppState) utils.ChannelDeleteHandler {
	return func(c *discordgo.ChannelDelete) {
		ctx, cancel := as.InteractionContext()
		defer cancel()

		ticket, err := model.FindOpenTicketByChannel(ctx, as.BunDB, c.ID)
		switch {
		case errors.Is(err, model.ErrTicketNotFound):
			return
		case err != nil:
			slog.Error("channelGoneHandler: can't look up ticket", "channel", c.ID, "error", err)
			return
		}

		if err := ticket.Close(ctx, as.BunDB, model.TicketStateClosed, ""); err != nil && !errors.Is(err, model.ErrTicketNotFound) {
			slog.Error("channelGoneHandler: can't close ticket", "ticket", ticket.ID, "error", err)
			return
		}
		as.MetricChans.Tickets.WithLabelValues(string(model.TicketStateClosed)).Inc()
		slog.Info("ticket channel deleted outside the bot, ticket closed", "ticket", ticket.ID, "channel", c.ID)
	}
}
