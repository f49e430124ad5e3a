package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// FileReporter implements ports.Reporter by writing timestamped files into
// an output directory.
type FileReporter struct {
	outputDir string
	log       *zap.SugaredLogger
}

// NewFileReporter creates a reporter rooted at outputDir, creating the
// directory if needed.
func NewFileReporter(outputDir string, log *zap.SugaredLogger) (*FileReporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileReporter{outputDir: outputDir, log: log}, nil
}

func (r *FileReporter) path(prefix, ext string) string {
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(r.outputDir, fmt.Sprintf("%s_%s.%s", prefix, stamp, ext))
}

// WriteJSON serializes the complete run. Field names follow the domain
// model's JSON tags, so every EmailVariant field round-trips losslessly.
func (r *FileReporter) WriteJSON(results *domain.RunResults) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	path := r.path("report", "json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	r.log.Infow("JSON report written", "path", path)
	return path, nil
}

// csvHeader is the fixed, explicit field list for attack-result rows
var csvHeader = []string{
	"timestamp", "target_url", "variant", "technique",
	"status_code", "response_time_ms", "success", "indicators", "error",
}

// WriteCSV renders the attack results as tabular rows
func (r *FileReporter) WriteCSV(results *domain.RunResults) (string, error) {
	path := r.path("results", "csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results.AttackResults {
		row := []string{
			result.Timestamp.Format(time.RFC3339),
			result.TargetURL,
			result.Variant,
			string(result.Technique),
			strconv.Itoa(result.StatusCode),
			strconv.FormatInt(result.ResponseTime.Milliseconds(), 10),
			strconv.FormatBool(result.Success),
			strings.Join(result.Indicators, "|"),
			result.Error,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV report: %w", err)
	}

	r.log.Infow("CSV report written", "path", path, "rows", len(results.AttackResults))
	return path, nil
}

// WriteHTML renders the run as a standalone page
func (r *FileReporter) WriteHTML(results *domain.RunResults) (string, error) {
	path := r.path("report", "html")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML report: %w", err)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, newHTMLData(results)); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}

	r.log.Infow("HTML report written", "path", path)
	return path, nil
}
