package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// rollupTable is created by the embedded migrations.
const rollupTable = "debtlens_rollups"

const rollupColumns = "id, actor, repo, avg_ai_likelihood, avg_technical_debt, avg_cognitive_debt, file_count, high_risk_count, total_issues, created_at"

// RollupStoreImpl persists snapshot rollups scoped by actor.
type RollupStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RollupStore = &RollupStoreImpl{} // Compile-time check

// NewRollupStore migrates the schema to the latest version and opens the store.
// The none backend returns a store that keeps nothing.
func NewRollupStore(backend schema.DatabaseBackend, connStr string) (*RollupStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &RollupStoreImpl{backend: backend}, nil
	}
	if _, err := MigrateRollups(backend, connStr, -1); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	return &RollupStoreImpl{db: db, backend: backend}, nil
}

// bind rewrites "?" placeholders for the backend.
func (rs *RollupStoreImpl) bind(query string) string {
	if rs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(placeholder(rs.backend, n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRollup stores one rollup and returns its ID.
func (rs *RollupStoreImpl) SaveRollup(ctx context.Context, record schema.RollupRecord) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}
	if record.Actor == "" {
		return 0, fmt.Errorf("%w: rollup actor cannot be empty", contract.ErrInvalidInput)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := rs.bind(fmt.Sprintf(`INSERT INTO %s (actor, repo, avg_ai_likelihood, avg_technical_debt, avg_cognitive_debt,
		file_count, high_risk_count, total_issues, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quoteTableName(rollupTable, rs.backend)))
	args := []any{
		record.Actor, record.Repo,
		record.AvgAILikelihood, record.AvgTechnicalDebt, record.AvgCognitiveDebt,
		record.FileCount, record.HighRiskCount, record.TotalIssues,
		record.CreatedAt.UnixMilli(),
	}

	// pgx does not support LastInsertId
	if rs.backend == schema.PostgreSQLBackend {
		var id int64
		if err := rs.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to save rollup: %w", err)
		}
		return id, nil
	}

	res, err := rs.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to save rollup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get rollup ID: %w", err)
	}
	return id, nil
}

// ListRollups returns the newest rollups of one actor.
func (rs *RollupStoreImpl) ListRollups(ctx context.Context, actor string, limit int) ([]schema.RollupRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE actor = ? ORDER BY created_at DESC, id DESC",
		rollupColumns, quoteTableName(rollupTable, rs.backend))
	args := []any{actor}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rs.db.QueryContext(ctx, rs.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RollupRecord
	for rows.Next() {
		var (
			r       schema.RollupRecord
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Actor, &r.Repo, &r.AvgAILikelihood, &r.AvgTechnicalDebt, &r.AvgCognitiveDebt,
			&r.FileCount, &r.HighRiskCount, &r.TotalIssues, &created); err != nil {
			return nil, fmt.Errorf("failed to scan rollup: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// ClearRollups deletes every rollup of one actor.
func (rs *RollupStoreImpl) ClearRollups(ctx context.Context, actor string) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}
	query := rs.bind(fmt.Sprintf("DELETE FROM %s WHERE actor = ?", quoteTableName(rollupTable, rs.backend)))
	res, err := rs.db.ExecContext(ctx, query, actor)
	if err != nil {
		return 0, fmt.Errorf("failed to clear rollups: %w", err)
	}
	return res.RowsAffected()
}

// GetStatus returns status information about the rollup store.
func (rs *RollupStoreImpl) GetStatus() (schema.RollupStatus, error) {
	status := schema.RollupStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}
	if rs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(rollupTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT actor) FROM %s", quoted))
	if err := row.Scan(&status.TotalRollups, &status.TotalActors); err != nil {
		return status, fmt.Errorf("failed to count rollups: %w", err)
	}
	if status.TotalRollups == 0 {
		return status, nil
	}

	var last, oldest int64
	row = rs.db.QueryRow(fmt.Sprintf("SELECT MAX(created_at), MIN(created_at) FROM %s", quoted))
	if err := row.Scan(&last, &oldest); err != nil {
		return status, fmt.Errorf("failed to get rollup times: %w", err)
	}
	status.LastRollupTime = time.UnixMilli(last).UTC()
	status.OldestRollup = time.UnixMilli(oldest).UTC()
	if rs.backend == schema.SQLiteBackend {
		status.TableSizeBytes = sqliteFileSize(rs.db)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (rs *RollupStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
