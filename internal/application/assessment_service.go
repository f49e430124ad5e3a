package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
	"github.com/glyphprobe/glyphprobe/internal/domain/variant"
	"github.com/glyphprobe/glyphprobe/internal/ports"
)

// defaultEndpoints are attacked when reconnaissance finds nothing
var defaultEndpoints = []string{"/forgot-password", "/password/reset"}

// AssessmentService orchestrates the assessment pipeline: reconnaissance,
// variant generation, attack execution, reporting and optional persistence.
//
// Partial-failure discipline: collaborator failures that still leave a
// useful run (scan failed, persistence failed, one report format failed)
// are logged and the pipeline continues; only variant generation and attack
// execution failures abort the run.
type AssessmentService struct {
	target string
	engine *variant.Engine

	scanner  ports.Scanner
	executor ports.AttackExecutor
	reporter ports.Reporter
	storage  ports.Storage // nil when persistence is not configured

	log *zap.SugaredLogger
}

// NewAssessmentService wires the pipeline. storage may be nil.
func NewAssessmentService(
	target string,
	engine *variant.Engine,
	scanner ports.Scanner,
	executor ports.AttackExecutor,
	reporter ports.Reporter,
	storage ports.Storage,
	log *zap.SugaredLogger,
) *AssessmentService {
	return &AssessmentService{
		target:   target,
		engine:   engine,
		scanner:  scanner,
		executor: executor,
		reporter: reporter,
		storage:  storage,
		log:      log,
	}
}

// RunFullAssessment executes the complete pipeline for one email
func (s *AssessmentService) RunFullAssessment(ctx context.Context, email string, maxVariants int) (*domain.RunResults, error) {
	results := &domain.RunResults{
		ID:        uuid.New(),
		Target:    s.target,
		Email:     email,
		StartedAt: time.Now(),
	}

	// Phase 1: reconnaissance. A failed scan degrades to the default
	// endpoint list instead of aborting.
	scan, err := s.scanner.Scan(ctx)
	if err != nil {
		s.log.Warnw("reconnaissance failed, continuing with defaults", "error", err)
	} else {
		results.Scan = scan
	}

	// Phase 2: variant generation
	variants, err := s.engine.GenerateAll(email, maxVariants)
	if err != nil {
		return nil, fmt.Errorf("variant generation failed: %w", err)
	}
	results.Variants = variants
	results.VariantStats = variant.Stats(variants)

	// Phase 3: attack execution
	endpoints := defaultEndpoints
	if scan != nil && len(scan.ForgotPasswordEndpoints) > 0 {
		endpoints = scan.ForgotPasswordEndpoints
	} else {
		s.log.Warnw("no password reset endpoints discovered, using defaults",
			"endpoints", defaultEndpoints)
	}

	attackResults, err := s.executor.Execute(ctx, variants, endpoints)
	if err != nil {
		return nil, fmt.Errorf("attack campaign failed: %w", err)
	}
	results.AttackResults = attackResults
	results.AttackStats = s.executor.Statistics(attackResults)

	// Phase 4: persistence, when configured
	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, results); err != nil {
			s.log.Warnw("failed to persist run", "run_id", results.ID, "error", err)
		} else {
			s.log.Infow("run persisted", "run_id", results.ID)
		}
	}

	return results, nil
}

// WriteReports renders the requested format(s); "all" writes every one.
// Individual format failures are logged and do not abort the remaining
// formats.
func (s *AssessmentService) WriteReports(results *domain.RunResults, format string) []string {
	type renderer struct {
		name  string
		write func(*domain.RunResults) (string, error)
	}

	renderers := []renderer{
		{"html", s.reporter.WriteHTML},
		{"json", s.reporter.WriteJSON},
		{"csv", s.reporter.WriteCSV},
	}

	var paths []string
	for _, r := range renderers {
		if format != "all" && format != r.name {
			continue
		}
		path, err := r.write(results)
		if err != nil {
			s.log.Warnw("report generation failed", "format", r.name, "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}
