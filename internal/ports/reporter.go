package ports

import (
	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// Reporter defines the contract for rendering assessment results to files
type Reporter interface {
	// WriteHTML renders the full run as a standalone HTML page and returns
	// the written path
	WriteHTML(results *domain.RunResults) (string, error)

	// WriteJSON serializes the full run losslessly and returns the written path
	WriteJSON(results *domain.RunResults) (string, error)

	// WriteCSV renders the attack results as tabular rows and returns the
	// written path
	WriteCSV(results *domain.RunResults) (string, error)
}
