package ticket_handler

import (
	"fmt"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func open(as *utils.AppState) {
	as.AddAppCmdHandler(OpenButtonID, openHandler(as))
}

// openHandler answers the panel button with the ticket form.
func openHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if err := as.Discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: FormModalID,
				Title:    "Nowy ticket",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    CategoryInputID,
							Label:       "Kategoria (INNE lub ZAKUPY)",
							Style:       discordgo.TextInputShort,
							Placeholder: "INNE",
							Required:    true,
							MinLength:   4,
							MaxLength:   maxCategoryLength,
						},
					}},
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    ContentInputID,
							Label:       "Opisz swoją sprawę",
							Style:       discordgo.TextInputParagraph,
							Required:    true,
							MaxLength:   maxContentLength,
						},
					}},
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  NickInputID,
							Label:     "Twój nick",
							Style:     discordgo.TextInputShort,
							Required:  false,
							MaxLength: maxNickLength,
						},
					}},
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  ExtraInputID,
							Label:     "Dodatkowe informacje",
							Style:     discordgo.TextInputParagraph,
							Required:  false,
							MaxLength: maxExtraLength,
						},
					}},
				},
			},
		}); err != nil {
			return fmt.Errorf("ticket_handler:open: can't show the form: %w", err)
		}
		return nil
	}
}
