package handler

import (
	"fmt"
	"runtime"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState) {
	id := "ping"
	as.AddAppCmdHandler(id, pingHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Sprawdź, czy bot żyje.",
	})
}

func pingHandler(as *utils.AppState) utils.InteractionHandler {
	return func(i *discordgo.InteractionCreate) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		memUsage := float64(m.Sys) / 1024 / 1024

		startTimer := time.Now()
		utils.InteractRespHiddenEmbeds(as.Discord, i, &discordgo.MessageEmbed{
			Title: "Pong!",
			Footer: &discordgo.MessageEmbedFooter{
				Text: i.GuildID,
			},
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:  "Uptime",
					Value: as.GetUptime().String(),
				},
				{
					Name:   "Latency",
					Value:  fmt.Sprintf("%dms", as.Discord.HeartbeatLatency().Milliseconds()),
					Inline: true,
				},
				{
					Name:   "Go version",
					Value:  runtime.Version(),
					Inline: true,
				},
				{
					Name:   "Memory",
					Value:  fmt.Sprintf("%.2fMB", memUsage),
					Inline: true,
				},
			},
		})
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
