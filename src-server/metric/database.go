package metric

import (
	"time"

	"gildia/src-server/model"
	"gildia/src-server/utils"
)

// database times a read that never matches a row.
func database(as *utils.AppState) (time.Duration, error) {
	ctx, cancel := as.InteractionContext()
	defer cancel()

	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Ticket)(nil)).
		Where("channel_id = ?", "").
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func openTickets(as *utils.AppState) (int, error) {
	ctx, cancel := as.InteractionContext()
	defer cancel()
	return model.CountOpenTickets(ctx, as.BunDB, as.Config.GetDiscordGuildID())
}
