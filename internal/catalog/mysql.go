package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-sql-driver/mysql"

	"menusearch/internal/config"
)

func openMySQL(ctx context.Context, cfg config.CatalogConfig) (Reader, error) {
	mc := cfg.MySQL
	if mc == nil {
		return nil, &ConnectionError{Backend: "mysql", Err: errors.New("mysql catalog config missing")}
	}
	host := mc.Host
	if host == "" {
		host = "localhost"
	}
	port := mc.Port
	if port == 0 {
		port = 3306
	}
	dsnCfg := mysql.NewConfig()
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", host, port)
	dsnCfg.DBName = mc.Database
	dsnCfg.User = mc.User
	dsnCfg.Passwd = os.Getenv(mc.PasswordEnv)
	return openSQL(ctx, "mysql", "mysql", dsnCfg.FormatDSN(), cfg)
}
