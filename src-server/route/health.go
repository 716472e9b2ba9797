package route

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gildia/src-server/utils"
)

func Health(muxer *http.ServeMux, as *utils.AppState) {
	type HealthRespBody struct {
		Status                   string `json:"status"`
		Database                 string `json:"database"`
		DatabaseLatencyMicrosec  int64  `json:"databaseLatencyMicrosec"`
		DiscordHeartbeatMicrosec int64  `json:"discordHeartbeatMicrosec"`
		UptimeSec                int64  `json:"uptimeSec"`
	}

	muxer.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respBody := HealthRespBody{
			Status:                   "ok",
			Database:                 "ok",
			DiscordHeartbeatMicrosec: as.Discord.HeartbeatLatency().Microseconds(),
			UptimeSec:                int64(as.GetUptime().Seconds()),
		}

		ctx, cancel := as.InteractionContext()
		defer cancel()
		startTimer := time.Now()
		if err := as.BunDB.PingContext(ctx); err != nil {
			slog.Error("health check: can't ping database", "error", err)
			respBody.Status = "degraded"
			respBody.Database = "unreachable"
		} else {
			respBody.DatabaseLatencyMicrosec = time.Since(startTimer).Microseconds()
		}

		w.Header().Set("Content-Type", "application/json")
		if respBody.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			slog.Warn("health check: can't write response", "error", err)
		}
	})
}
