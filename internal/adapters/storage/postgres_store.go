package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// PostgresStore implements ports.Storage for PostgreSQL. Runs are the unit
// of persistence: one row per assessment plus its variants and attack
// results, so past campaigns against the same target stay comparable.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage instance
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the tables if they don't exist. A migration tool would
// replace this once the schema starts evolving.
func (s *PostgresStore) InitSchema() error {
	schema := `
	-- One row per assessment run. Scan results and the two statistics
	-- blocks are stored as JSONB: they are written once, read whole, and
	-- never queried field-by-field.
	CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY,
		target TEXT NOT NULL,
		email TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		scan_results JSONB,
		variant_stats JSONB NOT NULL,
		attack_stats JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	-- Generated variants, ordered by position to preserve generation order
	-- on reload. unicode_points is a JSONB int array: small, read whole.
	CREATE TABLE IF NOT EXISTS variants (
		run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
		position INT NOT NULL,
		original TEXT NOT NULL,
		variant TEXT NOT NULL,
		technique VARCHAR(20) NOT NULL,
		unicode_points JSONB NOT NULL,
		visual_similarity DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS attack_results (
		run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
		position INT NOT NULL,
		attacked_at TIMESTAMPTZ NOT NULL,
		target_url TEXT NOT NULL,
		variant TEXT NOT NULL,
		technique VARCHAR(20) NOT NULL,
		status_code INT NOT NULL,
		response_time_ms BIGINT NOT NULL,
		success BOOLEAN NOT NULL,
		indicators JSONB NOT NULL,
		error TEXT,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_attack_results_success ON attack_results(run_id) WHERE success;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveRun persists a run with its variants and attack results in one
// transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, results *domain.RunResults) error {
	scanJSON, err := json.Marshal(results.Scan)
	if err != nil {
		return fmt.Errorf("failed to marshal scan results: %w", err)
	}
	variantStatsJSON, err := json.Marshal(results.VariantStats)
	if err != nil {
		return fmt.Errorf("failed to marshal variant stats: %w", err)
	}
	attackStatsJSON, err := json.Marshal(results.AttackStats)
	if err != nil {
		return fmt.Errorf("failed to marshal attack stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, target, email, started_at, scan_results, variant_stats, attack_stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		results.ID, results.Target, results.Email, results.StartedAt,
		scanJSON, variantStatsJSON, attackStatsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, v := range results.Variants {
		points, err := json.Marshal(v.UnicodePoints)
		if err != nil {
			return fmt.Errorf("failed to marshal unicode points: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO variants (run_id, position, original, variant, technique, unicode_points, visual_similarity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			results.ID, i, v.Original, v.Variant, v.Technique, points, v.VisualSimilarity)
		if err != nil {
			return fmt.Errorf("failed to insert variant %d: %w", i, err)
		}
	}

	for i, r := range results.AttackResults {
		indicators, err := json.Marshal(r.Indicators)
		if err != nil {
			return fmt.Errorf("failed to marshal indicators: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attack_results (run_id, position, attacked_at, target_url, variant, technique,
				status_code, response_time_ms, success, indicators, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			results.ID, i, r.Timestamp, r.TargetURL, r.Variant, r.Technique,
			r.StatusCode, r.ResponseTime.Milliseconds(), r.Success, indicators, r.Error)
		if err != nil {
			return fmt.Errorf("failed to insert attack result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a full run by ID
func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*domain.RunResults, error) {
	var (
		results          domain.RunResults
		scanJSON         []byte
		variantStatsJSON []byte
		attackStatsJSON  []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, target, email, started_at, scan_results, variant_stats, attack_stats
		FROM runs WHERE id = $1`, id).
		Scan(&results.ID, &results.Target, &results.Email, &results.StartedAt,
			&scanJSON, &variantStatsJSON, &attackStatsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if len(scanJSON) > 0 {
		if err := json.Unmarshal(scanJSON, &results.Scan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan results: %w", err)
		}
	}
	if err := json.Unmarshal(variantStatsJSON, &results.VariantStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variant stats: %w", err)
	}
	if err := json.Unmarshal(attackStatsJSON, &results.AttackStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attack stats: %w", err)
	}

	if results.Variants, err = s.loadVariants(ctx, id); err != nil {
		return nil, err
	}
	if results.AttackResults, err = s.loadAttackResults(ctx, id); err != nil {
		return nil, err
	}
	return &results, nil
}

func (s *PostgresStore) loadVariants(ctx context.Context, id uuid.UUID) ([]domain.EmailVariant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT original, variant, technique, unicode_points, visual_similarity
		FROM variants WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.EmailVariant
	for rows.Next() {
		var (
			v      domain.EmailVariant
			points []byte
		)
		if err := rows.Scan(&v.Original, &v.Variant, &v.Technique, &points, &v.VisualSimilarity); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if err := json.Unmarshal(points, &v.UnicodePoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal unicode points: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *PostgresStore) loadAttackResults(ctx context.Context, id uuid.UUID) ([]domain.AttackResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attacked_at, target_url, variant, technique, status_code,
			response_time_ms, success, indicators, COALESCE(error, '')
		FROM attack_results WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load attack results: %w", err)
	}
	defer rows.Close()

	var results []domain.AttackResult
	for rows.Next() {
		var (
			r          domain.AttackResult
			responseMs int64
			indicators []byte
		)
		if err := rows.Scan(&r.Timestamp, &r.TargetURL, &r.Variant, &r.Technique,
			&r.StatusCode, &responseMs, &r.Success, &indicators, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan attack result: %w", err)
		}
		r.ResponseTime = time.Duration(responseMs) * time.Millisecond
		if err := json.Unmarshal(indicators, &r.Indicators); err != nil {
			return nil, fmt.Errorf("failed to unmarshal indicators: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListRuns returns run summaries (statistics only, no variants or attack
// results), newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]domain.RunResults, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, email, started_at, variant_stats, attack_stats
		FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunResults
	for rows.Next() {
		var (
			run              domain.RunResults
			variantStatsJSON []byte
			attackStatsJSON  []byte
		)
		if err := rows.Scan(&run.ID, &run.Target, &run.Email, &run.StartedAt,
			&variantStatsJSON, &attackStatsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal(variantStatsJSON, &run.VariantStats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variant stats: %w", err)
		}
		if err := json.Unmarshal(attackStatsJSON, &run.AttackStats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attack stats: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
