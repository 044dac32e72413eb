package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlineGauge      prometheus.Gauge
	RoomsGauge       prometheus.Gauge
	AnswersTotal     prometheus.Counter
	EventHandleDelay prometheus.Histogram
	SweptRooms       prometheus.Counter
	SendBytes        prometheus.Counter
	RecvBytes        prometheus.Counter
	DroppedMessages  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tunequiz",
			Subsystem: "sessions",
			Name:      "online_total",
			Help:      "Online sessions",
		}),
		RoomsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tunequiz",
			Subsystem: "rooms",
			Name:      "active_total",
			Help:      "Active rooms",
		}),
		AnswersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tunequiz",
			Subsystem: "rooms",
			Name:      "answers_total",
			Help:      "Settled answer submissions",
		}),
		EventHandleDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tunequiz",
			Subsystem: "rooms",
			Name:      "event_handle_ms",
			Help:      "Room event handling time in ms",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50},
		}),
		SweptRooms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tunequiz",
			Subsystem: "rooms",
			Name:      "swept_total",
			Help:      "Rooms removed by the idle sweep",
		}),
		SendBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tunequiz",
			Subsystem: "net",
			Name:      "send_bytes_total",
			Help:      "Total outbound bytes",
		}),
		RecvBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tunequiz",
			Subsystem: "net",
			Name:      "recv_bytes_total",
			Help:      "Total inbound bytes",
		}),
		DroppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tunequiz",
			Subsystem: "net",
			Name:      "dropped_messages_total",
			Help:      "Dropped outbound messages due to backpressure",
		}),
	}

	prometheus.MustRegister(
		m.OnlineGauge,
		m.RoomsGauge,
		m.AnswersTotal,
		m.EventHandleDelay,
		m.SweptRooms,
		m.SendBytes,
		m.RecvBytes,
		m.DroppedMessages,
	)

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
