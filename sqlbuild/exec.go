package sqlbuild

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// Executor runs a finished query. Pagination slicing is the caller's
// concern; the executor returns the full result set of the query it is
// given.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)
}

// DBExecutor runs queries through database/sql. Works with any registered
// driver, including DuckDB.
type DBExecutor struct {
	DB *sql.DB
}

func (e *DBExecutor) Query(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	rows, err := e.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlbuild: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlbuild: columns: %w", err)
	}

	var out []Row
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlbuild: scan: %w", err)
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlbuild: rows: %w", err)
	}
	return out, nil
}

// PgxExecutor runs queries through a pgx connection pool. Placeholders are
// rewritten from `?` to `$1..$n` before execution.
type PgxExecutor struct {
	Pool *pgxpool.Pool
}

func (e *PgxExecutor) Query(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	rows, err := e.Pool.Query(ctx, Positional(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlbuild: query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("sqlbuild: values: %w", err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlbuild: rows: %w", err)
	}
	return out, nil
}
