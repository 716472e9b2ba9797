package ticket_handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const (
	PanelCommandID = "ticket-panel"
	ListCommandID  = "ticket-list"

	OpenButtonID   = "ticket-open"
	CloseButtonID  = "ticket-close"
	NotifyButtonID = "ticket-notify"
	BanButtonID    = "ticket-ban"

	FormModalID     = "ticket-form"
	CategoryInputID = "ticket-category"
	ContentInputID  = "ticket-content"
	NickInputID     = "ticket-nick"
	ExtraInputID    = "ticket-extra"

	msgPermissionDenied = "Nie masz uprawnień do tej akcji."
	msgTicketNotFound   = "Nie znaleziono otwartego ticketu dla tego kanału."
	msgGenericFailure   = "Coś poszło nie tak, spróbuj ponownie później."
)

// category name as typed in the form -> channel name glyph
var categoryGlyphs = map[string]string{
	"INNE":   "❓",
	"ZAKUPY": "🛒",
}

// CategoryGlyph normalises a category typed by the user and returns it with
// its glyph. ok is false for anything outside the table.
func CategoryGlyph(raw string) (category string, glyph string, ok bool) {
	category = utils.NormalizeKeyword(raw)
	glyph, ok = categoryGlyphs[category]
	return category, glyph, ok
}

// ChannelName is the glyph followed by the requester's username.
func ChannelName(glyph, username string) string {
	return glyph + "-" + strings.ToLower(username)
}

// Init registers the ticket commands, buttons and the form.
func Init(as *utils.AppState) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	inFlight := new(singleflight.Group)

	panel(as)
	list(as)
	open(as)
	submit(as, validate, inFlight)
	closeTicket(as)
	notify(as)
	ban(as)
}

func isTicketAdmin(as *utils.AppState, i *discordgo.InteractionCreate) bool {
	return utils.InteractionHasRole(i, as.Config.GetTicketAdminRoleID())
}

// loadTicket finds the open ticket behind the channel the button lives in.
// Replies to the user itself when it can't, ok is false then.
func loadTicket(as *utils.AppState, i *discordgo.InteractionCreate, caller string) (*model.Ticket, bool, error) {
	ctx, cancel := as.InteractionContext()
	defer cancel()

	startTimer := time.Now()
	ticket, err := model.FindOpenTicketByChannel(ctx, as.BunDB, i.ChannelID)
	as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
	switch {
	case errors.Is(err, model.ErrTicketNotFound):
		utils.InteractRespHiddenReply(as.Discord, i, msgTicketNotFound)
		return nil, false, nil
	case err != nil:
		utils.InteractRespHiddenReply(as.Discord, i, msgGenericFailure)
		return nil, false, fmt.Errorf("%s: can't load ticket of channel %s: %w", caller, i.ChannelID, err)
	}
	return ticket, true, nil
}
