package database

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

// testDB connects to the database named by the TEST_DB_* environment
// variables. Tests are skipped when no test database is configured, so the
// unit suite stays runnable without infrastructure.
func testDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping repository integration test")
	}

	db, err := NewConnection(
		host,
		envOr("TEST_DB_PORT", "5432"),
		envOr("TEST_DB_USER", "alert_user"),
		envOr("TEST_DB_PASSWORD", "alert_password"),
		envOr("TEST_DB_NAME", "alert_comb_test"),
	)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if _, err := db.Exec("DELETE FROM alerts"); err != nil {
		t.Fatalf("Failed to clean alerts table: %v", err)
	}

	return db
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func TestUpsertAlertIdempotency(t *testing.T) {
	repo := NewAlertRepository(testDB(t))

	sent := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := repo.UpsertAlert(&Alert{
		NWSID:    "NWS-IDEMPOTENT-1",
		Event:    "Flood Warning",
		Severity: "Severe",
		SentAt:   &sent,
		Raw:      json.RawMessage(`{"id": "NWS-IDEMPOTENT-1", "version": 1}`),
	})
	if err != nil {
		t.Fatalf("Expected no error on first upsert, got: %v", err)
	}

	// Second observation overwrites every mutable column, including
	// overwriting present values with absence.
	second, err := repo.UpsertAlert(&Alert{
		NWSID: "NWS-IDEMPOTENT-1",
		Event: "Flood Watch",
		Raw:   json.RawMessage(`{"id": "NWS-IDEMPOTENT-1", "version": 2}`),
	})
	if err != nil {
		t.Fatalf("Expected no error on second upsert, got: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected stable surrogate id %d, got: %d", first.ID, second.ID)
	}
	if second.Event != "Flood Watch" {
		t.Errorf("Expected updated event 'Flood Watch', got: %s", second.Event)
	}
	if second.Severity != "" {
		t.Errorf("Expected severity overwritten with absence, got: %s", second.Severity)
	}
	if second.SentAt != nil {
		t.Errorf("Expected sent_at overwritten with absence, got: %v", second.SentAt)
	}

	count, err := repo.GetAlertCount()
	if err != nil {
		t.Fatalf("Failed to count alerts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one row, got: %d", count)
	}

	stored, err := repo.GetAlert("NWS-IDEMPOTENT-1")
	if err != nil {
		t.Fatalf("Failed to get alert: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(stored.Raw, &raw); err != nil {
		t.Fatalf("Failed to decode raw document: %v", err)
	}
	if raw["version"] != float64(2) {
		t.Errorf("Expected raw to reflect the latest observation, got: %v", raw["version"])
	}
}

func TestConcurrentUpsertConvergence(t *testing.T) {
	repo := NewAlertRepository(testDB(t))

	const writers = 10

	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.UpsertAlert(&Alert{
				NWSID: "NWS-CONCURRENT-1",
				Event: fmt.Sprintf("Event %d", n),
				Raw:   json.RawMessage(fmt.Sprintf(`{"writer": %d}`, n)),
			})
			if err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Expected no uniqueness failure visible to callers, got: %v", err)
	}

	count, err := repo.GetAlertCount()
	if err != nil {
		t.Fatalf("Failed to count alerts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected concurrent upserts to converge to one row, got: %d", count)
	}

	// The surviving row must equal one of the submitted payloads.
	stored, err := repo.GetAlert("NWS-CONCURRENT-1")
	if err != nil {
		t.Fatalf("Failed to get alert: %v", err)
	}
	found := false
	for i := 0; i < writers; i++ {
		if stored.Event == fmt.Sprintf("Event %d", i) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected event from one writer, got: %s", stored.Event)
	}
}

func TestListAlertsNewestFirst(t *testing.T) {
	repo := NewAlertRepository(testDB(t))

	for i := 1; i <= 3; i++ {
		_, err := repo.UpsertAlert(&Alert{
			NWSID: fmt.Sprintf("NWS-LIST-%d", i),
			Event: "Flood Warning",
			Raw:   json.RawMessage(`{}`),
		})
		if err != nil {
			t.Fatalf("Failed to upsert alert: %v", err)
		}
	}

	alerts, err := repo.ListAlerts(2)
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got: %d", len(alerts))
	}
	if alerts[0].NWSID != "NWS-LIST-3" {
		t.Errorf("Expected most recently inserted alert first, got: %s", alerts[0].NWSID)
	}
	if alerts[1].NWSID != "NWS-LIST-2" {
		t.Errorf("Expected second newest alert next, got: %s", alerts[1].NWSID)
	}
}

func TestGetAlertAbsent(t *testing.T) {
	repo := NewAlertRepository(testDB(t))

	alert, err := repo.GetAlert("NWS-DOES-NOT-EXIST")
	if err != nil {
		t.Fatalf("Expected no error for absent alert, got: %v", err)
	}
	if alert != nil {
		t.Errorf("Expected nil for absent alert, got: %+v", alert)
	}
}
