package ports

import (
	"context"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// AttackExecutor defines the contract for submitting generated variants to
// discovered endpoints and classifying the responses. Implementations treat
// EmailVariant.Variant as an opaque string.
type AttackExecutor interface {
	// Execute runs the variants × endpoints campaign and returns one result
	// per completed attempt
	Execute(ctx context.Context, variants []domain.EmailVariant, endpoints []string) ([]domain.AttackResult, error)

	// Statistics aggregates the results of the last Execute call
	Statistics(results []domain.AttackResult) domain.AttackStats
}
