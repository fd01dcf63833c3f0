package storage

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"pwt/internal/config"
)

// ErrNoResultsDB is returned when sqlite3 is used without --results-db.
var ErrNoResultsDB = errors.New("no results database configured, pass --results-db")

// ResultsDSN returns the DSN for the results database.
//
// An explicit --results-db wins. sqlite3 has no default file, since runs are
// only recorded when one is given. mysql is configured from PWT_DB_* variables
// read from the environment or the project's .env file.
func ResultsDSN(cfg *config.Config) (string, error) {
	if cfg.Flags.ResultsDB != "" {
		return cfg.Flags.ResultsDB, nil
	}

	if cfg.Flags.ResultsDriver != DriverMySQL {
		return "", ErrNoResultsDB
	}

	vars, err := godotenv.Read(filepath.Join(cfg.ProjectPath, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	lookup := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := vars[key]; v != "" {
			return v
		}
		return fallback
	}

	dsn := mysql.NewConfig()
	dsn.User = lookup("PWT_DB_USERNAME", "root")
	dsn.Passwd = lookup("PWT_DB_PASSWORD", "")
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(lookup("PWT_DB_HOST", "127.0.0.1"), lookup("PWT_DB_PORT", "3306"))
	dsn.DBName = lookup("PWT_DB_DATABASE", "pwt")
	return dsn.FormatDSN(), nil
}
