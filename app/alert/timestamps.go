package alert

import (
	"strings"
	"time"
)

// timestampFormats covers the ISO-8601 variants seen in the feed. RFC3339
// first, since that is what the feed emits in practice.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601-ish string into a time value. Empty input
// or a parse failure yields nil, never an error: a bad timestamp must not
// abort ingestion of the item it belongs to.
func ParseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, format := range timestampFormats {
		if t, err := time.Parse(format, value); err == nil {
			return &t
		}
	}

	return nil
}
