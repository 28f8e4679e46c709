// Package store persists the alert ledger: a record of every operator
// notification the relay sent. Conversation state itself is not persisted.
package store

import (
	"context"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
)

// ListParams filters ListAlerts.
type ListParams struct {
	SessionID string
	Limit     int
}

// Repository defines the interface for persisting alert records.
type Repository interface {
	// RecordAlert stores a new alert, assigning its ID if empty.
	RecordAlert(ctx context.Context, rec *domain.AlertRecord) error

	// ListAlerts returns alerts newest first.
	ListAlerts(ctx context.Context, p ListParams) ([]*domain.AlertRecord, error)

	// DeleteAlertsBefore removes alerts older than cutoff.
	DeleteAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
