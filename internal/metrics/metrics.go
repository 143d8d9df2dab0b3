// Package metrics exposes Prometheus counters for the game process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "multirpg"

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "World clock ticks applied (paused ticks excluded).",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "World events logged, by kind.",
	}, []string{"kind"})

	levelUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "level_ups_total",
		Help:      "Player level-ups.",
	})

	playersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "players_online",
		Help:      "Players currently online.",
	})

	messagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_delivered_total",
		Help:      "Outbound messages delivered to connections.",
	})

	messagesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_suppressed_total",
		Help:      "Outbound messages dropped by the mute filter at delivery.",
	})

	messagesCleared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_cleared_total",
		Help:      "Queued messages discarded by CLEARQ.",
	})

	mirrorWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mirror_write_failures_total",
		Help:      "Durable-store writes that failed after retries.",
	})
)

// RecordTick counts one applied world tick
func RecordTick() { ticksTotal.Inc() }

// RecordEvent counts one logged world event
func RecordEvent(kind string) { eventsTotal.WithLabelValues(kind).Inc() }

// RecordLevelUp counts one level-up
func RecordLevelUp() { levelUpsTotal.Inc() }

// SetPlayersOnline updates the online player gauge
func SetPlayersOnline(n int) { playersOnline.Set(float64(n)) }

// RecordDelivered counts one delivered outbound message
func RecordDelivered() { messagesDelivered.Inc() }

// RecordSuppressed counts one mute-filtered outbound message
func RecordSuppressed() { messagesSuppressed.Inc() }

// RecordCleared counts messages dropped by a queue clear
func RecordCleared(n int) { messagesCleared.Add(float64(n)) }

// RecordMirrorWriteFailure counts one abandoned durable write
func RecordMirrorWriteFailure() { mirrorWriteFailures.Inc() }
