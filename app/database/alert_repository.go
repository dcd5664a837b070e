package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// AlertRepository handles database operations for alerts
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// alertSelectColumns is the column list shared by every read path so scans
// stay aligned with scanAlert. "references" is a reserved word and must stay
// quoted.
const alertSelectColumns = `
	id, nws_id, COALESCE(event, ''), COALESCE(eventcode, ''),
	COALESCE(status, ''), COALESCE(message_type, ''), COALESCE(category, ''),
	COALESCE(severity, ''), COALESCE(certainty, ''), COALESCE(urgency, ''),
	COALESCE(scope, ''), COALESCE(code, ''), COALESCE(response, ''),
	COALESCE(language, ''), COALESCE(headline, ''), COALESCE(description, ''),
	COALESCE(instruction, ''), COALESCE(sender, ''), COALESCE(sender_name, ''),
	sent_at, effective_at, onset_at, expires_at, ends_at, updated_at,
	COALESCE(area_desc, ''), COALESCE(geocode::text, ''),
	COALESCE(affected_zones::text, ''), COALESCE("references"::text, ''),
	COALESCE(parameters::text, ''), COALESCE(web, ''), COALESCE(raw::text, '')`

// UpsertAlert inserts a new alert or, when a row with the same nws_id already
// exists, overwrites every mutable column with the incoming values. A single
// ON CONFLICT statement keeps the write atomic per key, so concurrent upserts
// for the same nws_id converge to one row and the surrogate id never changes.
func (r *AlertRepository) UpsertAlert(alert *Alert) (*Alert, error) {
	row := r.db.QueryRow(`
		INSERT INTO alerts (
			nws_id, event, eventcode, status, message_type, category,
			severity, certainty, urgency, scope, code, response, language,
			headline, description, instruction, sender, sender_name,
			sent_at, effective_at, onset_at, expires_at, ends_at, updated_at,
			area_desc, geocode, affected_zones, "references", parameters, web, raw
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24,
			$25, $26, $27, $28, $29, $30, $31
		)
		ON CONFLICT (nws_id) DO UPDATE SET
			event = EXCLUDED.event,
			eventcode = EXCLUDED.eventcode,
			status = EXCLUDED.status,
			message_type = EXCLUDED.message_type,
			category = EXCLUDED.category,
			severity = EXCLUDED.severity,
			certainty = EXCLUDED.certainty,
			urgency = EXCLUDED.urgency,
			scope = EXCLUDED.scope,
			code = EXCLUDED.code,
			response = EXCLUDED.response,
			language = EXCLUDED.language,
			headline = EXCLUDED.headline,
			description = EXCLUDED.description,
			instruction = EXCLUDED.instruction,
			sender = EXCLUDED.sender,
			sender_name = EXCLUDED.sender_name,
			sent_at = EXCLUDED.sent_at,
			effective_at = EXCLUDED.effective_at,
			onset_at = EXCLUDED.onset_at,
			expires_at = EXCLUDED.expires_at,
			ends_at = EXCLUDED.ends_at,
			updated_at = EXCLUDED.updated_at,
			area_desc = EXCLUDED.area_desc,
			geocode = EXCLUDED.geocode,
			affected_zones = EXCLUDED.affected_zones,
			"references" = EXCLUDED."references",
			parameters = EXCLUDED.parameters,
			web = EXCLUDED.web,
			raw = EXCLUDED.raw
		RETURNING `+alertSelectColumns,
		alert.NWSID, nullable(alert.Event), nullable(alert.EventCode),
		nullable(alert.Status), nullable(alert.MessageType), nullable(alert.Category),
		nullable(alert.Severity), nullable(alert.Certainty), nullable(alert.Urgency),
		nullable(alert.Scope), nullable(alert.Code), nullable(alert.Response),
		nullable(alert.Language), nullable(alert.Headline), nullable(alert.Description),
		nullable(alert.Instruction), nullable(alert.Sender), nullable(alert.SenderName),
		alert.SentAt, alert.EffectiveAt, alert.OnsetAt,
		alert.ExpiresAt, alert.EndsAt, alert.UpdatedAt,
		nullable(alert.AreaDesc), jsonArg(alert.Geocode), jsonArg(alert.AffectedZones),
		jsonArg(alert.References), jsonArg(alert.Parameters), nullable(alert.Web),
		jsonArg(alert.Raw))

	stored, err := scanAlert(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert alert: %w", err)
	}

	return stored, nil
}

// GetAlert retrieves an alert by its natural key, or nil if absent
func (r *AlertRepository) GetAlert(nwsID string) (*Alert, error) {
	row := r.db.QueryRow(`
		SELECT `+alertSelectColumns+`
		FROM alerts
		WHERE nws_id = $1
	`, nwsID)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

// ListAlerts returns the most recently inserted alerts first, bounded by limit
func (r *AlertRepository) ListAlerts(limit int) ([]Alert, error) {
	rows, err := r.db.Query(`
		SELECT `+alertSelectColumns+`
		FROM alerts
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return alerts, nil
}

// GetAlertCount returns the total number of stored alerts
func (r *AlertRepository) GetAlertCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM alerts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get alert count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*Alert, error) {
	var alert Alert
	var geocode, affectedZones, references, parameters, raw string

	err := row.Scan(
		&alert.ID, &alert.NWSID, &alert.Event, &alert.EventCode,
		&alert.Status, &alert.MessageType, &alert.Category,
		&alert.Severity, &alert.Certainty, &alert.Urgency,
		&alert.Scope, &alert.Code, &alert.Response,
		&alert.Language, &alert.Headline, &alert.Description,
		&alert.Instruction, &alert.Sender, &alert.SenderName,
		&alert.SentAt, &alert.EffectiveAt, &alert.OnsetAt,
		&alert.ExpiresAt, &alert.EndsAt, &alert.UpdatedAt,
		&alert.AreaDesc, &geocode, &affectedZones, &references,
		&parameters, &alert.Web, &raw,
	)
	if err != nil {
		return nil, err
	}

	alert.Geocode = rawMessage(geocode)
	alert.AffectedZones = rawMessage(affectedZones)
	alert.References = rawMessage(references)
	alert.Parameters = rawMessage(parameters)
	alert.Raw = rawMessage(raw)

	return &alert, nil
}

// nullable maps the empty string to NULL so an absent field in a new
// observation overwrites the stored value with absence.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// jsonArg passes a JSON document as text for the jsonb columns, NULL when absent
func jsonArg(m json.RawMessage) interface{} {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}

func rawMessage(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
