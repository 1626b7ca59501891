package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GraphFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntgraph_fetches_total",
		Help: "Total number of graph fetches, labelled by status (ok, error, breaker_open).",
	}, []string{"status"})

	GraphFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "huntgraph_fetch_duration_ms",
		Help:    "Backend graph fetch latency in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "huntgraph_recompute_duration_ms",
		Help:    "Time to materialize the visible subgraph in milliseconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})

	VisibleNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huntgraph_visible_nodes",
		Help: "Number of nodes in the current view.",
	})

	VisibleEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huntgraph_visible_edges",
		Help: "Number of edges in the current view.",
	})

	RejectedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntgraph_rejected_items_total",
		Help: "Payload items dropped while decoding, labelled by kind (node, link).",
	}, []string{"kind"})

	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntgraph_feed_events_total",
		Help: "Live feed events received, labelled by event type and whether they triggered a refresh.",
	}, []string{"type", "triggered"})

	FeedEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huntgraph_feed_events_dropped_total",
		Help: "Triggering feed events dropped because the refresh queue was full.",
	})

	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huntgraph_feed_connected",
		Help: "1 while the live feed connection is open, 0 otherwise.",
	})

	UserActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntgraph_user_actions_total",
		Help: "User actions applied to the view state, labelled by kind.",
	}, []string{"kind"})

	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huntgraph_stream_clients",
		Help: "Number of connected view stream clients.",
	})
)
