package alert

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/lysyi3m/alert-comb/app/database"
)

// ErrMissingID marks a feature with no usable identifier. The feature is
// dropped; the failure is attributable to the single offending item.
var ErrMissingID = errors.New("feature missing id")

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Run maps a raw feature into a canonical alert record. The identifier is
// resolved from the top-level id, falling back to properties.id. Every
// provenance annotation already attached to the feature is preserved into Raw.
func (n *Normalizer) Run(feature Feature) (*database.Alert, error) {
	props := feature.Properties()

	nwsID := feature.ID()
	if nwsID == "" {
		nwsID = stringProp(props, "id")
	}
	if nwsID == "" {
		return nil, ErrMissingID
	}

	raw, err := json.Marshal(feature)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw feature: %w", err)
	}

	alert := &database.Alert{
		NWSID:       nwsID,
		Event:       stringProp(props, "event"),
		EventCode:   eventCodeProp(props),
		Status:      stringProp(props, "status"),
		MessageType: stringProp(props, "messageType"),
		Category:    stringProp(props, "category"),
		Severity:    stringProp(props, "severity"),
		Certainty:   stringProp(props, "certainty"),
		Urgency:     stringProp(props, "urgency"),
		Scope:       stringProp(props, "scope"),
		Code:        stringProp(props, "code"),
		Response:    stringProp(props, "response"),
		Language:    normalizeLanguage(stringProp(props, "language")),

		Headline:    stringProp(props, "headline"),
		Description: stringProp(props, "description"),
		Instruction: stringProp(props, "instruction"),

		Sender:     stringProp(props, "sender"),
		SenderName: stringProp(props, "senderName"),

		SentAt:      ParseTimestamp(stringProp(props, "sent")),
		EffectiveAt: ParseTimestamp(stringProp(props, "effective")),
		OnsetAt:     ParseTimestamp(stringProp(props, "onset")),
		ExpiresAt:   ParseTimestamp(stringProp(props, "expires")),
		EndsAt:      ParseTimestamp(stringProp(props, "ends")),
		UpdatedAt:   ParseTimestamp(stringProp(props, "updated")),

		AreaDesc:      stringProp(props, "areaDesc"),
		Geocode:       jsonProp(props, "geocode"),
		AffectedZones: jsonProp(props, "affectedZones"),
		References:    jsonProp(props, "references"),
		Parameters:    jsonProp(props, "parameters"),
		Web:           stringProp(props, "web"),

		Raw: raw,
	}

	return alert, nil
}

// eventCodeProp resolves the event-code field. The feed carries the value
// under "eventCode", but the lower-case "eventcode" variant takes precedence
// whenever it is present and non-empty. This matches the established column
// contents; do not swap the order.
func eventCodeProp(props map[string]interface{}) string {
	if s := encodeProp(props, "eventcode"); s != "" {
		return s
	}
	return encodeProp(props, "eventCode")
}

// normalizeLanguage canonicalizes a BCP 47 language tag (e.g. "en-us" ->
// "en-US"). Unparsable tags pass through unchanged.
func normalizeLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

func stringProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

// encodeProp returns the value as-is when it is a string, otherwise its
// compact JSON encoding. The event-code field arrives as an object in the
// feed but is persisted in a text column.
func encodeProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	value, ok := props[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}

// jsonProp returns the value's JSON encoding for the opaque document columns,
// nil when absent
func jsonProp(props map[string]interface{}, key string) json.RawMessage {
	if props == nil {
		return nil
	}
	value, ok := props[key]
	if !ok || value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return data
}
