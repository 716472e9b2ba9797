package handler

import (
	"fmt"
	"log/slog"
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	msgPermissionDenied = "Nie masz uprawnień do tej komendy."

	// Discord's maximum page size for the member list endpoint
	memberPageSize = 1000
)

func AdminPanel(as *utils.AppState) {
	id := "panel"
	as.AddAppCmdHandler(id, adminPanelHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Statystyki serwera dla administracji.",
	})
}

type memberStats struct {
	total    int
	withRole int
}

func adminPanelHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		if !utils.InteractionHasRole(i, as.Config.GetPanelAdminRoleID()) {
			utils.InteractRespHiddenReply(as.Discord, i, msgPermissionDenied)
			return nil
		}

		// counting members of a big guild takes longer than Discord's 3s
		startTimer := time.Now()
		if err := utils.InteractRespHiddenDefer(as.Discord, i); err != nil {
			return fmt.Errorf("adminPanelHandler: can't send defer message: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		targetRoleID := as.Config.GetPanelTargetRoleID()
		stats, err := countMembers(as.Discord, i.GuildID, targetRoleID)
		if err != nil {
			msg := "Nie udało się pobrać listy członków."
			utils.InteractRespEdit(as.Discord, i, &discordgo.WebhookEdit{Content: &msg})
			return fmt.Errorf("adminPanelHandler: %w", err)
		}

		ctx, cancel := as.InteractionContext()
		defer cancel()
		startTimer = time.Now()
		openTickets, err := model.CountOpenTickets(ctx, as.BunDB, i.GuildID)
		as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
		openTicketsValue := fmt.Sprintf("%d", openTickets)
		if err != nil {
			slog.Error("adminPanelHandler: can't count open tickets", "error", err)
			openTicketsValue = "?"
		}

		targetRoleValue := "nie ustawiono"
		if targetRoleID != "" {
			targetRoleValue = fmt.Sprintf("<@&%s>: %d", targetRoleID, stats.withRole)
		}

		utils.InteractRespEdit(as.Discord, i, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{{
				Title: "Panel administracyjny",
				Color: 0xFEE75C,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:   "Członkowie",
						Value:  fmt.Sprintf("%d", stats.total),
						Inline: true,
					},
					{
						Name:   "Z rolą",
						Value:  targetRoleValue,
						Inline: true,
					},
					{
						Name:   "Otwarte tickety",
						Value:  openTicketsValue,
						Inline: true,
					},
				},
				Footer: &discordgo.MessageEmbedFooter{
					Text: i.GuildID,
				},
				Timestamp: time.Now().Format(time.RFC3339),
			}},
		})
		return nil
	}
}

func countMembers(dg utils.Discord, guildID, roleID string) (memberStats, error) {
	var stats memberStats
	after := ""
	for {
		page, err := dg.GuildMembers(guildID, after, memberPageSize)
		if err != nil {
			return memberStats{}, fmt.Errorf("countMembers: can't list members after %q: %w", after, err)
		}
		for _, member := range page {
			stats.total++
			if utils.HasRole(member.Roles, roleID) {
				stats.withRole++
			}
		}
		if len(page) < memberPageSize {
			return stats, nil
		}
		last := page[len(page)-1]
		if last.User == nil {
			return stats, nil
		}
		after = last.User.ID
	}
}
