package ticket_handler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord hands out at most 100 messages per request, that's enough for a
// support conversation.
const transcriptMessageLimit = 100

// renderTranscript formats the channel history oldest first, one line per
// message, attachments as urls.
func renderTranscript(ticket *model.Ticket, messages []*discordgo.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticket %s (%s)\n", ticket.ID, ticket.Category)
	fmt.Fprintf(&sb, "Zgłaszający: %s (%s)\n", ticket.RequesterName, ticket.RequesterID)
	fmt.Fprintf(&sb, "Otwarty: %s\n\n", time.Unix(ticket.CreatedAt, 0).UTC().Format(time.DateTime))

	// the API returns the newest message first
	for idx := len(messages) - 1; idx >= 0; idx-- {
		msg := messages[idx]
		author := "unknown"
		if msg.Author != nil {
			author = msg.Author.Username
		}
		fmt.Fprintf(&sb, "[%s] %s: %s\n", msg.Timestamp.UTC().Format(time.DateTime), author, msg.Content)
		for _, attachment := range msg.Attachments {
			fmt.Fprintf(&sb, "    załącznik: %s\n", attachment.URL)
		}
	}
	return sb.String()
}

// postTranscript archives the ticket channel into TICKET_LOG_CHANNEL_ID.
// Nothing here blocks closing the ticket, failures are only logged.
func postTranscript(as *utils.AppState, ticket *model.Ticket, actor *discordgo.User) {
	logChannelID := as.Config.GetTicketLogChannelID()
	if logChannelID == "" {
		return
	}

	messages, err := as.Discord.ChannelMessages(ticket.ChannelID, transcriptMessageLimit)
	if err != nil {
		slog.Warn("postTranscript: can't fetch channel history", "channel", ticket.ChannelID, "error", err)
		messages = nil
	}

	actorMention := "-"
	if actor != nil {
		actorMention = fmt.Sprintf("<@%s>", actor.ID)
	}

	startTimer := time.Now()
	if _, err := as.Discord.ChannelMessageSendComplex(logChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title: fmt.Sprintf("%s Ticket %s", categoryGlyphs[ticket.Category], stateLabel(ticket.State)),
			Color: stateColor(ticket.State),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Zgłaszający", Value: fmt.Sprintf("<@%s>", ticket.RequesterID), Inline: true},
				{Name: "Kategoria", Value: ticket.Category, Inline: true},
				{Name: "Przez", Value: actorMention, Inline: true},
				{Name: "Wiadomości", Value: fmt.Sprint(len(messages)), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: ticket.ID},
		}},
		Files: []*discordgo.File{{
			Name:        fmt.Sprintf("transcript-%s.txt", ticket.ChannelID),
			ContentType: "text/plain",
			Reader:      strings.NewReader(renderTranscript(ticket, messages)),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		slog.Warn("postTranscript: can't post transcript", "channel", logChannelID, "error", err)
		return
	}
	as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
}

func stateLabel(state model.TicketState) string {
	switch state {
	case model.TicketStateBanned:
		return "zamknięty (ban)"
	case model.TicketStateClosed:
		return "zamknięty"
	default:
		return "otwarty"
	}
}

func stateColor(state model.TicketState) int {
	if state == model.TicketStateBanned {
		return 0xED4245
	}
	return 0x99AAB5
}
