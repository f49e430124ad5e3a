package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glyphprobe/glyphprobe/internal/domain"
	"github.com/glyphprobe/glyphprobe/internal/domain/variant"
)

type fakeScanner struct {
	report *domain.ScanReport
	err    error
}

func (f *fakeScanner) Scan(ctx context.Context) (*domain.ScanReport, error) {
	return f.report, f.err
}

type fakeExecutor struct {
	err       error
	endpoints []string
	variants  []domain.EmailVariant
}

func (f *fakeExecutor) Execute(ctx context.Context, variants []domain.EmailVariant, endpoints []string) ([]domain.AttackResult, error) {
	f.variants = variants
	f.endpoints = endpoints
	if f.err != nil {
		return nil, f.err
	}
	results := make([]domain.AttackResult, 0, len(variants)*len(endpoints))
	for _, v := range variants {
		for _, e := range endpoints {
			results = append(results, domain.AttackResult{
				TargetURL: e,
				Variant:   v.Variant,
				Technique: v.Technique,
			})
		}
	}
	return results, nil
}

func (f *fakeExecutor) Statistics(results []domain.AttackResult) domain.AttackStats {
	return domain.AttackStats{TotalAttacks: len(results)}
}

type fakeReporter struct {
	htmlErr error
	written []string
}

func (f *fakeReporter) write(name string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	f.written = append(f.written, name)
	return name, nil
}

func (f *fakeReporter) WriteHTML(*domain.RunResults) (string, error) {
	return f.write("report.html", f.htmlErr)
}

func (f *fakeReporter) WriteJSON(*domain.RunResults) (string, error) {
	return f.write("report.json", nil)
}

func (f *fakeReporter) WriteCSV(*domain.RunResults) (string, error) {
	return f.write("results.csv", nil)
}

type fakeStorage struct {
	err   error
	saved []*domain.RunResults
}

func (f *fakeStorage) SaveRun(ctx context.Context, results *domain.RunResults) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, results)
	return nil
}

func (f *fakeStorage) GetRun(ctx context.Context, id uuid.UUID) (*domain.RunResults, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStorage) ListRuns(ctx context.Context, limit int) ([]domain.RunResults, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStorage) Close() error { return nil }

type serviceFixture struct {
	service  *AssessmentService
	scanner  *fakeScanner
	executor *fakeExecutor
	reporter *fakeReporter
	storage  *fakeStorage
}

func newFixture(opts ...func(*serviceFixture)) *serviceFixture {
	f := &serviceFixture{
		scanner: &fakeScanner{
			report: &domain.ScanReport{
				Target:                  "https://target.example.com",
				ForgotPasswordEndpoints: []string{"https://target.example.com/account/recover"},
			},
		},
		executor: &fakeExecutor{},
		reporter: &fakeReporter{},
		storage:  &fakeStorage{},
	}
	for _, opt := range opts {
		opt(f)
	}
	log := zap.NewNop().Sugar()
	f.service = NewAssessmentService(
		"https://target.example.com",
		variant.NewEngine(log),
		f.scanner, f.executor, f.reporter, f.storage, log,
	)
	return f
}

func TestRunFullAssessment_HappyPath(t *testing.T) {
	f := newFixture()

	results, err := f.service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, results.ID)
	assert.Equal(t, "https://target.example.com", results.Target)
	assert.Equal(t, "user@example.com", results.Email)
	assert.NotNil(t, results.Scan)
	assert.Len(t, results.Variants, 10)
	assert.Equal(t, 10, results.VariantStats.Total)
	assert.Equal(t, len(results.AttackResults), results.AttackStats.TotalAttacks)

	// Discovered endpoints win over the built-in fallback list.
	assert.Equal(t, []string{"https://target.example.com/account/recover"}, f.executor.endpoints)

	require.Len(t, f.storage.saved, 1)
	assert.Same(t, results, f.storage.saved[0])
}

func TestRunFullAssessment_ScanFailureFallsBackToDefaults(t *testing.T) {
	f := newFixture(func(f *serviceFixture) {
		f.scanner.err = errors.New("connection refused")
		f.scanner.report = nil
	})

	results, err := f.service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.NoError(t, err)

	assert.Nil(t, results.Scan)
	assert.Equal(t, defaultEndpoints, f.executor.endpoints)
}

func TestRunFullAssessment_EmptyScanFallsBackToDefaults(t *testing.T) {
	f := newFixture(func(f *serviceFixture) {
		f.scanner.report = &domain.ScanReport{Target: "https://target.example.com"}
	})

	results, err := f.service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.NoError(t, err)

	assert.NotNil(t, results.Scan)
	assert.Equal(t, defaultEndpoints, f.executor.endpoints)
}

func TestRunFullAssessment_InvalidEmailAborts(t *testing.T) {
	f := newFixture()

	_, err := f.service.RunFullAssessment(context.Background(), "not-an-email", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, variant.ErrInvalidEmailFormat)
	assert.Nil(t, f.executor.variants)
}

func TestRunFullAssessment_ExecutorFailureAborts(t *testing.T) {
	f := newFixture(func(f *serviceFixture) {
		f.executor.err = errors.New("campaign aborted")
	})

	_, err := f.service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attack campaign failed")
}

func TestRunFullAssessment_StorageFailureDoesNotAbort(t *testing.T) {
	f := newFixture(func(f *serviceFixture) {
		f.storage.err = errors.New("connection lost")
	})

	results, err := f.service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, f.storage.saved)
}

func TestRunFullAssessment_WithoutStorage(t *testing.T) {
	f := newFixture()
	log := zap.NewNop().Sugar()
	service := NewAssessmentService(
		"https://target.example.com",
		variant.NewEngine(log),
		f.scanner, f.executor, f.reporter, nil, log,
	)

	results, err := service.RunFullAssessment(context.Background(), "user@example.com", 10)
	require.NoError(t, err)
	assert.NotNil(t, results)
}

func TestWriteReports_AllFormats(t *testing.T) {
	f := newFixture()

	paths := f.service.WriteReports(&domain.RunResults{}, "all")

	assert.Equal(t, []string{"report.html", "report.json", "results.csv"}, paths)
}

func TestWriteReports_SingleFormat(t *testing.T) {
	f := newFixture()

	paths := f.service.WriteReports(&domain.RunResults{}, "json")

	assert.Equal(t, []string{"report.json"}, paths)
	assert.Equal(t, []string{"report.json"}, f.reporter.written)
}

func TestWriteReports_FailedFormatIsSkipped(t *testing.T) {
	f := newFixture(func(f *serviceFixture) {
		f.reporter.htmlErr = errors.New("template failure")
	})

	paths := f.service.WriteReports(&domain.RunResults{}, "all")

	assert.Equal(t, []string{"report.json", "results.csv"}, paths)
}
