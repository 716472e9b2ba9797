package metric

import (
	"errors"
	"log/slog"
	"time"

	"gildia/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// register adds c to reg. A collector that is already there (a second Init
// in the same process) is not an error, the existing one is returned.
func register(reg prometheus.Registerer, name string, c prometheus.Collector) (prometheus.Collector, bool) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector, true
		}
		slog.Error("can't register metric", "name", name, "error", err)
		return nil, false
	}
	slog.Debug("metric registered", "name", name)
	return c, true
}

func registerGauge(reg prometheus.Registerer, name, help string) (prometheus.Gauge, bool) {
	c, ok := register(reg, name, prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}))
	if !ok {
		return nil, false
	}
	gauge, ok := c.(prometheus.Gauge)
	if !ok {
		slog.Error("metric registered with another type", "name", name)
	}
	return gauge, ok
}

// latencyGauge shows the latest sample pushed into ch. It drops back to 0
// when nothing was pushed for clearInterval.
func latencyGauge(as *utils.AppState, reg prometheus.Registerer, name, help string, ch <-chan float64, clearInterval time.Duration) {
	gauge, ok := registerGauge(reg, name, help)
	if !ok {
		return
	}
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				if !reg.Unregister(gauge) {
					slog.Warn("metric not registered", "name", name)
				}
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// polledGauge sets the gauge to sample() every interval. A failing sample
// keeps the previous value.
func polledGauge(as *utils.AppState, reg prometheus.Registerer, name, help string, interval time.Duration, sample func() (float64, error)) {
	gauge, ok := registerGauge(reg, name, help)
	if !ok {
		return
	}
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				if !reg.Unregister(gauge) {
					slog.Warn("metric not registered", "name", name)
				}
				return
			case <-ticker.C:
				value, err := sample()
				if err != nil {
					slog.Error("can't collect metric", "name", name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

// Init registers the bot's collectors on reg and starts the goroutines that
// feed them. They stop on AppState.GracefulShutdown.
func Init(as *utils.AppState, reg prometheus.Registerer) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	register(reg, "gildia_interactions_total", as.MetricChans.Interactions)
	register(reg, "gildia_tickets_total", as.MetricChans.Tickets)
	register(reg, "gildia_verified_members_total", as.MetricChans.Verified)

	latencyGauge(as, reg, "gildia_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	latencyGauge(as, reg, "gildia_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	latencyGauge(as, reg, "gildia_discord_send_message_microsec",
		"The latency of a discord message send in microseconds",
		as.MetricChans.DiscordSendMessage, clearTickerInterval)

	polledGauge(as, reg, "gildia_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		tickerInterval, func() (float64, error) {
			latency, err := database(as)
			return float64(latency.Microseconds()), err
		})
	polledGauge(as, reg, "gildia_discord_heartbeat_latency_microsec",
		"The latency of a discord heartbeat in microseconds",
		tickerInterval, func() (float64, error) {
			return float64(as.Discord.HeartbeatLatency().Microseconds()), nil
		})
	polledGauge(as, reg, "gildia_open_tickets",
		"Tickets currently open in the guild",
		tickerInterval, func() (float64, error) {
			count, err := openTickets(as)
			return float64(count), err
		})
}
