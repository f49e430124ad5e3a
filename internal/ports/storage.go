package ports

import (
	"context"

	"github.com/glyphprobe/glyphprobe/internal/domain"
	"github.com/google/uuid"
)

// Storage defines the contract for persisting assessment runs. Persistence
// is optional: the CLI only wires an implementation when a DSN is
// configured.
type Storage interface {
	// SaveRun persists a run with its variants and attack results
	SaveRun(ctx context.Context, results *domain.RunResults) error

	// GetRun loads a previously persisted run
	GetRun(ctx context.Context, id uuid.UUID) (*domain.RunResults, error)

	// ListRuns returns the most recent run summaries, newest first
	ListRuns(ctx context.Context, limit int) ([]domain.RunResults, error)

	// Lifecycle
	Close() error
}
