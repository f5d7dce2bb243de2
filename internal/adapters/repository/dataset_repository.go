package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/ports"
)

// DatasetRepositoryImpl implements DatasetStore on postgres. Staging
// tables are all-text: typing raw columns at load time is an analytics
// concern, not an ingestion one.
type DatasetRepositoryImpl struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(db *sqlx.DB) ports.DatasetStore {
	return &DatasetRepositoryImpl{db: db}
}

func (r *DatasetRepositoryImpl) EnsureTable(ctx context.Context, schema, table string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("dataset has no columns")
	}

	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = pq.QuoteIdentifier(c) + " TEXT"
	}

	ddl := fmt.Sprintf(`
		CREATE SCHEMA IF NOT EXISTS %s;
		CREATE TABLE IF NOT EXISTS %s.%s (
			ingested_at timestamptz NOT NULL DEFAULT now(),
			%s
		)`,
		pq.QuoteIdentifier(schema),
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(table),
		strings.Join(cols, ",\n\t\t\t"),
	)

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure staging table %s.%s: %w", schema, table, err)
	}
	return nil
}

func (r *DatasetRepositoryImpl) AppendRows(ctx context.Context, schema, table string, ds ports.Dataset) error {
	if len(ds.Rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingestion transaction: %w", err)
	}
	defer tx.Rollback()

	cols := make([]string, len(ds.Columns))
	placeholders := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = pq.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		pq.QuoteIdentifier(schema), pq.QuoteIdentifier(table),
		strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare ingestion insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range ds.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert ingested row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingestion transaction: %w", err)
	}
	return nil
}

func (r *DatasetRepositoryImpl) RecordRun(ctx context.Context, run *entities.IngestionRun) error {
	query := `
		INSERT INTO ingestion_runs (source_file, schema_name, table_name, row_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		run.SourceFile, run.Schema, run.Table, run.RowCount,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("record ingestion run: %w", err)
	}
	return nil
}
