// Package metrics exposes Prometheus counters for commands, ticks and broadcasts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeUsage = "usage"
	OutcomeError = "error"
)

// Recorder is what the dispatcher, scheduler and broadcaster report to.
type Recorder interface {
	RecordCommand(name, outcome string)
	RecordTick(announcements int)
	RecordBroadcast(kind string)
	RecordSend(ok bool)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	commands   *prometheus.CounterVec
	ticks      prometheus.Counter
	announced  prometheus.Counter
	broadcasts *prometheus.CounterVec
	sends      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regimen_commands_total",
			Help: "Handled chat commands by name and outcome.",
		}, []string{"command", "outcome"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regimen_ticks_total",
			Help: "Minute ticks evaluated.",
		}),
		announced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regimen_announcements_total",
			Help: "Announcements produced by minute ticks.",
		}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regimen_broadcasts_total",
			Help: "Broadcasts started by announcement kind.",
		}, []string{"kind"}),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regimen_sends_total",
			Help: "Outbound messages by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.commands, c.ticks, c.announced, c.broadcasts, c.sends)
	return c
}

func (c *Collector) RecordCommand(name, outcome string) {
	c.commands.WithLabelValues(name, outcome).Inc()
}

func (c *Collector) RecordTick(announcements int) {
	c.ticks.Inc()
	c.announced.Add(float64(announcements))
}

func (c *Collector) RecordBroadcast(kind string) {
	c.broadcasts.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordSend(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.sends.WithLabelValues(result).Inc()
}

// Handler serves the Prometheus scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
