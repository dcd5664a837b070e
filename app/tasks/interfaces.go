package tasks

import (
	"github.com/lysyi3m/alert-comb/app/database"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// AlertRepository is the slice of the store the poller needs
type AlertRepository interface {
	UpsertAlert(alert *database.Alert) (*database.Alert, error)
}

var _ AlertRepository = (*database.AlertRepository)(nil)
