package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	PeersRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "proxysync_peers_registered", Help: "Peers seen by the last registry read"},
	)
	FanOutWidth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "proxysync_fanout_width", Help: "Peers targeted by the last broadcast"},
		[]string{"operation"},
	)
	Broadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "proxysync_broadcasts_total", Help: "Broadcasts by aggregate result"},
		[]string{"operation", "policy", "result"},
	)
	PeerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "proxysync_peer_calls_total", Help: "Outbound peer calls by outcome"},
		[]string{"operation", "result"},
	)
	BroadcastLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxysync_broadcast_duration_seconds",
			Help:    "Time until the aggregation policy completed",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "policy"},
	)
	Enrollments = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "proxysync_enrollments_total", Help: "Peer addition attempts by final state"},
		[]string{"state"},
	)
	EventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "proxysync_event_subscribers", Help: "Connected websocket event subscribers"},
	)
)

// Init registers collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(PeersRegistered, FanOutWidth, Broadcasts, PeerCalls, BroadcastLatency)
		prometheus.MustRegister(Enrollments, EventSubscribers)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
