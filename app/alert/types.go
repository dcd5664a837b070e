package alert

// Annotation keys attached to a feature before it is persisted into the raw
// column. The keys match the shape consumers of the raw document already
// expect.
const (
	FeedFetchKey        = "_feed_fetch"
	DetailFetchKey      = "_detail_fetch"
	DetailKey           = "_detail"
	DetailFetchErrorKey = "_detail_fetch_error"
)

// Feature is one entry from the feed's features array, kept in its decoded
// map form so provenance annotations survive verbatim into the stored raw
// document.
type Feature map[string]interface{}

// ID returns the feature's top-level identifier, or "" when absent
func (f Feature) ID() string {
	if id, ok := f["id"].(string); ok {
		return id
	}
	return ""
}

// Properties returns the feature's nested properties document, or nil when absent
func (f Feature) Properties() map[string]interface{} {
	if props, ok := f["properties"].(map[string]interface{}); ok {
		return props
	}
	return nil
}

// FeedPayload is the feed response envelope. A missing or null features
// array is treated as empty.
type FeedPayload struct {
	Features []Feature `json:"features"`
}

// FetchInfo records how an HTTP resource was retrieved: the final URL, the
// response status, and the ordered URLs visited before reaching the final one.
type FetchInfo struct {
	FetchedURL string   `json:"fetched_url"`
	StatusCode int      `json:"status_code"`
	Redirects  []string `json:"redirects"`
}
