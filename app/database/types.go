package database

import (
	"encoding/json"
	"time"
)

// Alert is the canonical persisted record for one alert feed item.
// NWSID is the natural key; ID is the store-assigned surrogate, stable
// across updates.
type Alert struct {
	ID    int64
	NWSID string

	// Classification
	Event       string
	EventCode   string
	Status      string
	MessageType string
	Category    string
	Severity    string
	Certainty   string
	Urgency     string
	Scope       string
	Code        string
	Response    string
	Language    string

	// Narrative
	Headline    string
	Description string
	Instruction string

	// Sender
	Sender     string
	SenderName string

	// Temporal (absent or unparsable source values map to nil)
	SentAt      *time.Time
	EffectiveAt *time.Time
	OnsetAt     *time.Time
	ExpiresAt   *time.Time
	EndsAt      *time.Time
	UpdatedAt   *time.Time

	// Spatial / linkage (opaque documents, passed through verbatim)
	AreaDesc      string
	Geocode       json.RawMessage
	AffectedZones json.RawMessage
	References    json.RawMessage
	Parameters    json.RawMessage
	Web           string

	// Raw holds the complete original feature plus fetch-provenance
	// annotations. Never interpreted, only preserved.
	Raw json.RawMessage
}
