package api

import (
	"github.com/lysyi3m/alert-comb/app/alert"
	"github.com/lysyi3m/alert-comb/app/database"
)

// AlertRepository is the slice of the store the HTTP surface needs
type AlertRepository interface {
	UpsertAlert(alert *database.Alert) (*database.Alert, error)
	GetAlert(nwsID string) (*database.Alert, error)
	ListAlerts(limit int) ([]database.Alert, error)
	GetAlertCount() (int, error)
}

var _ AlertRepository = (*database.AlertRepository)(nil)

type Handler struct {
	alertRepo  AlertRepository
	normalizer *alert.Normalizer
}
