package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Latencies are pushed into the channels and picked up by the metric
// package. Collectors are created here but only registered by metric.Init.
type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64

	Interactions *prometheus.CounterVec
	Tickets      *prometheus.CounterVec
	Verified     prometheus.Counter
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 64),
		DatabaseWrite:      make(chan float64, 64),
		DiscordSendMessage: make(chan float64, 64),

		Interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gildia_interactions_total",
			Help: "Handled interactions by command name or custom id and result",
		}, []string{"id", "result"}),
		Tickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gildia_tickets_total",
			Help: "Ticket lifecycle events",
		}, []string{"action"}),
		Verified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gildia_verified_members_total",
			Help: "Members granted the verification role",
		}),
	}
}

// Observe records the time elapsed since start in microseconds. It never
// blocks; samples are dropped when nobody is collecting.
func (m *Metric) Observe(ch chan float64, start time.Time) {
	select {
	case ch <- float64(time.Since(start).Microseconds()):
	default:
	}
}
