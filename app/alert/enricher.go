package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// DetailFetchTimeout bounds the secondary per-item fetch
const DetailFetchTimeout = 10 * time.Second

// Enricher retrieves the detail resource behind a feature whose identifier is
// itself a URL. It only ever annotates the feature; a failed detail fetch
// must never fail the item.
type Enricher struct {
	client    *http.Client
	userAgent string
}

func NewEnricher(client *http.Client, userAgent string) *Enricher {
	return &Enricher{
		client:    client,
		userAgent: userAgent,
	}
}

// Run annotates the feature with detail-fetch provenance when its identifier
// is fetchable. On success the parsed body is attached as supplementary
// detail, unless the feature already carries one. On failure the error text
// is attached instead.
func (e *Enricher) Run(ctx context.Context, feature Feature) {
	id := feature.ID()
	if !strings.HasPrefix(id, "http") {
		return
	}

	info, body, err := Fetch(ctx, e.client, id, e.userAgent, DetailFetchTimeout)
	if err != nil {
		feature[DetailFetchErrorKey] = err.Error()
		return
	}

	feature[DetailFetchKey] = info

	var detail interface{}
	if err := json.Unmarshal(body, &detail); err == nil && detail != nil {
		if _, exists := feature[DetailKey]; !exists {
			feature[DetailKey] = detail
		}
	}
}
