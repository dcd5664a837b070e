package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertcomb_poll_cycles_total",
		Help: "Total number of feed poll cycles started.",
	})

	FeedFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertcomb_feed_fetch_errors_total",
		Help: "Total number of abandoned poll cycles due to feed fetch or decode failures.",
	})

	AlertsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertcomb_alerts_upserted_total",
		Help: "Total number of alerts successfully upserted into the store.",
	})

	ItemFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertcomb_item_failures_total",
		Help: "Total number of feed items dropped, labelled by failure reason.",
	}, []string{"reason"})

	DetailFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertcomb_detail_fetch_errors_total",
		Help: "Total number of failed per-item detail fetches (annotated, not fatal).",
	})
)
