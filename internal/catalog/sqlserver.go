package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	_ "github.com/microsoft/go-mssqldb"

	"menusearch/internal/config"
)

func openSQLServer(ctx context.Context, cfg config.CatalogConfig) (Reader, error) {
	sc := cfg.SQLServer
	if sc == nil {
		return nil, &ConnectionError{Backend: "sqlserver", Err: errors.New("sqlserver catalog config missing")}
	}
	host := sc.Host
	if host == "" {
		host = "localhost"
	}
	query := url.Values{}
	query.Set("database", sc.Database)
	query.Set("encrypt", "true")
	query.Set("trustservercertificate", "true")
	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: query.Encode(),
	}
	if sc.Port != 0 {
		u.Host = fmt.Sprintf("%s:%d", host, sc.Port)
	}
	// Omitting user info makes the driver use ambient (integrated) credentials.
	if !sc.TrustedConnection {
		password := os.Getenv(sc.PasswordEnv)
		if sc.User == "" || password == "" {
			return nil, &ConnectionError{
				Backend: "sqlserver",
				Err:     fmt.Errorf("missing user or password (env %s); set trusted_connection for integrated auth", sc.PasswordEnv),
			}
		}
		u.User = url.UserPassword(sc.User, password)
	}
	return openSQL(ctx, "sqlserver", "sqlserver", u.String(), cfg)
}
