package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/alert-comb/app/alert"
	"github.com/lysyi3m/alert-comb/app/metrics"
)

// FeedURL is the alerts feed endpoint. Fixed; tests inject their own through
// the constructor.
const FeedURL = "https://api.weather.gov/alerts/active"

const feedFetchTimeout = 30 * time.Second

// PollFeedTask runs one poll cycle: fetch the feed once, then drive each
// feature sequentially through enrich -> normalize -> upsert. Per-item
// failures are logged and contained; only a failed feed fetch abandons the
// cycle.
type PollFeedTask struct {
	Task
	feedURL    string
	httpClient *http.Client
	enricher   *alert.Enricher
	normalizer *alert.Normalizer
	alertRepo  AlertRepository
	userAgent  string
}

func NewPollFeedTask(feedURL string, httpClient *http.Client, enricher *alert.Enricher,
	normalizer *alert.Normalizer, alertRepo AlertRepository, userAgent string) *PollFeedTask {
	return &PollFeedTask{
		Task:       NewTask(TaskTypePollFeed),
		feedURL:    feedURL,
		httpClient: httpClient,
		enricher:   enricher,
		normalizer: normalizer,
		alertRepo:  alertRepo,
		userAgent:  userAgent,
	}
}

func (t *PollFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	metrics.PollCycles.Inc()

	feedFetch, body, err := alert.Fetch(ctx, t.httpClient, t.feedURL, t.userAgent, feedFetchTimeout)
	if err != nil {
		metrics.FeedFetchErrors.Inc()
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	if feedFetch.StatusCode != http.StatusOK {
		metrics.FeedFetchErrors.Inc()
		return fmt.Errorf("feed returned HTTP %d", feedFetch.StatusCode)
	}

	var payload alert.FeedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.FeedFetchErrors.Inc()
		return fmt.Errorf("failed to decode feed: %w", err)
	}

	upserted := 0
	failed := 0

	for _, feature := range payload.Features {
		if feature == nil {
			continue
		}

		feature[alert.FeedFetchKey] = feedFetch

		t.enricher.Run(ctx, feature)
		if _, hasErr := feature[alert.DetailFetchErrorKey]; hasErr {
			metrics.DetailFetchErrors.Inc()
		}

		record, err := t.normalizer.Run(feature)
		if err != nil {
			failed++
			metrics.ItemFailures.WithLabelValues("normalize").Inc()
			slog.Warn("Skipping feature", "task", t.GetID(), "error", err)
			continue
		}

		if _, err := t.alertRepo.UpsertAlert(record); err != nil {
			failed++
			metrics.ItemFailures.WithLabelValues("store").Inc()
			slog.Error("Failed to upsert alert", "nws_id", record.NWSID, "error", err)
			continue
		}

		upserted++
		metrics.AlertsUpserted.Inc()
	}

	slog.Info("Task completed",
		"type", "PollFeed",
		"duration", t.GetDuration(),
		"total", len(payload.Features),
		"upserted", upserted,
		"failed", failed)

	return nil
}
