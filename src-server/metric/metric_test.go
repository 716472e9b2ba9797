package metric_test

import (
	"context"
	"testing"
	"time"

	"gildia/src-server/discordtest"
	"gildia/src-server/metric"
	"gildia/src-server/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gauge returns the current value of a registered gauge, -1 if it isn't
// registered.
func gauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestInit(t *testing.T) {
	as, _ := discordtest.NewAppState(t, map[string]string{
		"METRIC_COLLECTION_INTERVAL": "20ms",
	})
	reg := prometheus.NewRegistry()
	metric.Init(as, reg)
	t.Cleanup(as.GracefulShutdown)

	ticket := model.Ticket{ChannelID: "c", GuildID: discordtest.GuildID, RequesterID: "1", Category: "INNE"}
	require.NoError(t, ticket.Insert(context.Background(), as.BunDB))

	assert.Eventually(t, func() bool {
		return gauge(t, reg, "gildia_discord_heartbeat_latency_microsec") == 42000
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return gauge(t, reg, "gildia_open_tickets") == 1
	}, time.Second, 10*time.Millisecond)

	as.MetricChans.DatabaseWrite <- 1234
	assert.Eventually(t, func() bool {
		return gauge(t, reg, "gildia_database_write_microsec") == 1234
	}, time.Second, 5*time.Millisecond)

	as.MetricChans.Tickets.WithLabelValues("opened").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(as.MetricChans.Tickets.WithLabelValues("opened")))
	count, err := testutil.GatherAndCount(reg, "gildia_tickets_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInitTwice(t *testing.T) {
	as, _ := discordtest.NewAppState(t, nil)
	reg := prometheus.NewRegistry()
	metric.Init(as, reg)
	metric.Init(as, reg)
	as.GracefulShutdown()

	assert.Eventually(t, func() bool {
		return gauge(t, reg, "gildia_database_read_microsec") == -1
	}, time.Second, 10*time.Millisecond)
}
