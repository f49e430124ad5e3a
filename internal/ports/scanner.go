package ports

import (
	"context"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// Scanner defines the contract for target reconnaissance: endpoint
// discovery, OAuth and form scraping, technology fingerprinting and
// security-header inspection.
type Scanner interface {
	Scan(ctx context.Context) (*domain.ScanReport, error)
}
