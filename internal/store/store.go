package store

import (
	"context"

	"github.com/mockboard/iv/internal/models"
)

// Store defines the persistence interface for finished interview reports.
type Store interface {
	SaveReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetReportBySession(ctx context.Context, sessionID string) (*models.Report, error)
	ListReports(ctx context.Context, limit int) ([]*models.Report, error)
	DeleteReport(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
