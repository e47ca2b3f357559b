package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"menusearch/internal/config"
)

// Reader yields the distinct set of menu item names to index. A Reader holds
// an open connection and must be closed by the caller, including when the
// read itself fails.
type Reader interface {
	ReadDistinctItemNames(ctx context.Context) ([]string, error)
	Close() error
}

// Open selects a catalog backend by the configured type key and connects to
// it. Unknown keys fail with UnsupportedBackendError.
func Open(ctx context.Context, cfg config.CatalogConfig) (Reader, error) {
	switch cfg.Type {
	case "sqlserver":
		return openSQLServer(ctx, cfg)
	case "mysql":
		return openMySQL(ctx, cfg)
	case "sqlite":
		return openSQLite(ctx, cfg)
	default:
		return nil, &UnsupportedBackendError{Backend: cfg.Type}
	}
}

// sqlReader is the shared database/sql implementation behind every backend.
type sqlReader struct {
	backend string
	db      *sql.DB
	table   string
	column  string
}

func openSQL(ctx context.Context, backend, driver, dsn string, cfg config.CatalogConfig) (*sqlReader, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &ConnectionError{Backend: backend, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Backend: backend, Err: err}
	}
	return &sqlReader{backend: backend, db: db, table: cfg.Table, column: cfg.Column}, nil
}

func (r *sqlReader) ReadDistinctItemNames(ctx context.Context) ([]string, error) {
	// Table and column identifiers come from operator-owned configuration.
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", r.column, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Backend: r.backend, Err: err}
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &QueryError{Backend: r.backend, Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Backend: r.backend, Err: err}
	}
	return names, nil
}

func (r *sqlReader) Close() error {
	return r.db.Close()
}
