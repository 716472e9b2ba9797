package ticket_handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const (
	maxCategoryLength = 20
	maxContentLength  = 1000
	maxNickLength     = 64
	maxExtraLength    = 500
)

type ticketForm struct {
	Category string `validate:"required"`
	Content  string `validate:"required,max=1000"`
	Nick     string `validate:"max=64"`
	Extra    string `validate:"max=500"`
}

var formFieldNames = map[string]string{
	"Category": "Kategoria",
	"Content":  "Opis",
	"Nick":     "Nick",
	"Extra":    "Dodatkowe informacje",
}

type openResult struct {
	ticket   *model.Ticket
	existing bool
}

func submit(as *utils.AppState, validate *validator.Validate, inFlight *singleflight.Group) {
	as.AddAppCmdHandler(FormModalID, submitHandler(as, validate, inFlight))
}

func submitHandler(as *utils.AppState, validate *validator.Validate, inFlight *singleflight.Group) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		user := utils.InteractionUser(i)
		if user == nil || i.GuildID == "" {
			utils.InteractRespHiddenReply(as.Discord, i, "Tickety działają tylko na serwerze.")
			return nil
		}

		// #region - parse and validate the form
		values := modalValues(i.ModalSubmitData())
		category, glyph, ok := CategoryGlyph(values[CategoryInputID])
		if !ok {
			utils.InteractRespHiddenReply(as.Discord, i, fmt.Sprintf(
				"Nieprawidłowa kategoria `%s`. Dostępne kategorie: INNE, ZAKUPY.",
				utils.Truncate(strings.TrimSpace(values[CategoryInputID]), maxCategoryLength),
			))
			return nil
		}
		form := ticketForm{
			Category: category,
			Content:  strings.TrimSpace(values[ContentInputID]),
			Nick:     utils.CleanupString(values[NickInputID]),
			Extra:    strings.TrimSpace(values[ExtraInputID]),
		}
		if err := validate.Struct(form); err != nil {
			utils.InteractRespHiddenReply(as.Discord, i, describeValidationError(err))
			return nil
		}
		// #endregion

		startTimer := time.Now()
		if err := utils.InteractRespHiddenDefer(as.Discord, i); err != nil {
			return fmt.Errorf("ticket_handler:submit: can't send defer message: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		// double submits from one requester share a single channel
		v, err, _ := inFlight.Do(i.GuildID+"/"+user.ID, func() (interface{}, error) {
			return openTicket(as, i, user, form, glyph)
		})
		if err != nil {
			msg := msgGenericFailure
			utils.InteractRespEdit(as.Discord, i, &discordgo.WebhookEdit{Content: &msg})
			return fmt.Errorf("ticket_handler:submit: %w", err)
		}

		result := v.(openResult)
		msg := fmt.Sprintf("Ticket utworzony: <#%s>", result.ticket.ChannelID)
		if result.existing {
			msg = fmt.Sprintf("Masz już otwarty ticket: <#%s>", result.ticket.ChannelID)
		}
		utils.InteractRespEdit(as.Discord, i, &discordgo.WebhookEdit{Content: &msg})
		return nil
	}
}

func openTicket(as *utils.AppState, i *discordgo.InteractionCreate, user *discordgo.User, form ticketForm, glyph string) (openResult, error) {
	ctx, cancel := as.InteractionContext()
	defer cancel()

	startTimer := time.Now()
	existing, err := model.FindOpenTicketByRequester(ctx, as.BunDB, i.GuildID, user.ID)
	as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
	switch {
	case err == nil:
		return openResult{ticket: existing, existing: true}, nil
	case !errors.Is(err, model.ErrTicketNotFound):
		return openResult{}, fmt.Errorf("openTicket: can't look up open tickets: %w", err)
	}

	adminRoleID := as.Config.GetTicketAdminRoleID()
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   i.GuildID, // @everyone
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory | discordgo.PermissionAttachFiles,
		},
	}
	if adminRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    adminRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory | discordgo.PermissionManageMessages,
		})
	}

	startTimer = time.Now()
	channel, err := as.Discord.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 ChannelName(glyph, user.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket %s: %s", form.Category, user.Username),
		ParentID:             as.Config.GetTicketCategoryID(),
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return openResult{}, fmt.Errorf("openTicket: can't create channel: %w", err)
	}
	as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

	ticket := &model.Ticket{
		ChannelID:     channel.ID,
		GuildID:       i.GuildID,
		RequesterID:   user.ID,
		RequesterName: user.Username,
		Category:      form.Category,
		Content:       form.Content,
		Nick:          form.Nick,
		Extra:         form.Extra,
	}
	startTimer = time.Now()
	if err := ticket.Insert(ctx, as.BunDB); err != nil {
		if _, delErr := as.Discord.ChannelDelete(channel.ID); delErr != nil {
			slog.Warn("openTicket: can't remove orphaned ticket channel", "channel", channel.ID, "error", delErr)
		}
		return openResult{}, fmt.Errorf("openTicket: can't store ticket: %w", err)
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
	as.MetricChans.Tickets.WithLabelValues("opened").Inc()

	if _, err := as.Discord.ChannelMessageSendComplex(channel.ID, summaryMessage(ticket, adminRoleID)); err != nil {
		slog.Warn("openTicket: can't post the ticket summary", "channel", channel.ID, "error", err)
	}

	return openResult{ticket: ticket}, nil
}

func summaryMessage(ticket *model.Ticket, adminRoleID string) *discordgo.MessageSend {
	content := fmt.Sprintf("<@%s>", ticket.RequesterID)
	if adminRoleID != "" {
		content += fmt.Sprintf(" | <@&%s>", adminRoleID)
	}

	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	return &discordgo.MessageSend{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{{
			Title: fmt.Sprintf("%s Ticket: %s", categoryGlyphs[ticket.Category], ticket.Category),
			Color: 0x57F287,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "Zgłaszający",
					Value:  fmt.Sprintf("<@%s>", ticket.RequesterID),
					Inline: true,
				},
				{
					Name:   "Kategoria",
					Value:  ticket.Category,
					Inline: true,
				},
				{
					Name:  "Opis",
					Value: utils.Truncate(ticket.Content, 1024),
				},
				{
					Name:   "Nick",
					Value:  orDash(ticket.Nick),
					Inline: true,
				},
				{
					Name:   "Dodatkowe informacje",
					Value:  orDash(utils.Truncate(ticket.Extra, 1024)),
					Inline: true,
				},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: ticket.ID,
			},
			Timestamp: time.Unix(ticket.CreatedAt, 0).UTC().Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Zamknij",
						Style:    discordgo.SecondaryButton,
						CustomID: CloseButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
					},
					discordgo.Button{
						Label:    "Powiadom",
						Style:    discordgo.PrimaryButton,
						CustomID: NotifyButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔔"},
					},
					discordgo.Button{
						Label:    "Zbanuj",
						Style:    discordgo.DangerButton,
						CustomID: BanButtonID,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔨"},
					},
				},
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{ticket.RequesterID},
			Roles: func() []string {
				if adminRoleID == "" {
					return nil
				}
				return []string{adminRoleID}
			}(),
		},
	}
}

// modalValues flattens the submitted text inputs into custom id -> value.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, row := range data.Components {
		var inputs []discordgo.MessageComponent
		switch row := row.(type) {
		case *discordgo.ActionsRow:
			inputs = row.Components
		case discordgo.ActionsRow:
			inputs = row.Components
		}
		for _, input := range inputs {
			switch input := input.(type) {
			case *discordgo.TextInput:
				values[input.CustomID] = input.Value
			case discordgo.TextInput:
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func describeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Formularz zawiera błędy."
	}
	problems := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		name := formFieldNames[fieldErr.Field()]
		switch fieldErr.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("- %s jest wymagane", name))
		case "max":
			problems = append(problems, fmt.Sprintf("- %s może mieć najwyżej %s znaków", name, fieldErr.Param()))
		default:
			problems = append(problems, fmt.Sprintf("- %s jest nieprawidłowe", name))
		}
	}
	return "Popraw formularz:\n" + strings.Join(problems, "\n")
}
