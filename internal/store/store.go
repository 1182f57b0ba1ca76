// Package store defines the persistence interface for the hedge engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
//
// The engine itself never touches a store; only the HTTP service persists
// calculations and the scenario sweeps run against them.
package store

import (
	"context"
	"errors"

	"github.com/bondhedge/hedge-engine/internal/model"
)

// ErrNotFound is returned when a calculation does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Calculations (immutable once created) ---

	// CreateCalculation persists a new calculation snapshot.
	CreateCalculation(ctx context.Context, calc *model.Calculation) error

	// GetCalculation retrieves a calculation by its ID.
	GetCalculation(ctx context.Context, id string) (*model.Calculation, error)

	// ListCalculations returns up to limit calculations, newest first.
	// A limit <= 0 returns all of them.
	ListCalculations(ctx context.Context, limit int) ([]model.Calculation, error)

	// --- Scenario sweeps ---

	// InsertSweep appends a sweep for an existing calculation.
	InsertSweep(ctx context.Context, sweep *model.Sweep) error

	// GetSweepsByCalculation returns every sweep of a calculation, oldest first.
	GetSweepsByCalculation(ctx context.Context, calculationID string) ([]model.Sweep, error)
}
