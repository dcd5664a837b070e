package database

import (
	"testing"
)

func TestNewConnectionInvalidParams(t *testing.T) {
	_, err := NewConnection("invalid", "invalid", "invalid", "invalid", "invalid")
	if err == nil {
		t.Error("Expected error for invalid connection parameters")
	}

	// Valid connections are covered by the repository integration tests,
	// which require a running database.
}
