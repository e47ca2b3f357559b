package catalog

import (
	"context"
	"errors"

	_ "modernc.org/sqlite"

	"menusearch/internal/config"
)

func openSQLite(ctx context.Context, cfg config.CatalogConfig) (Reader, error) {
	sc := cfg.SQLite
	if sc == nil || sc.Path == "" {
		return nil, &ConnectionError{Backend: "sqlite", Err: errors.New("sqlite catalog path missing")}
	}
	return openSQL(ctx, "sqlite", "sqlite", sc.Path, cfg)
}
