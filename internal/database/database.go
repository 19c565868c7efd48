package database

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the database for the given driver ("sqlite" or "postgres").
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite":
		db, err := sqlx.Connect("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("connect sqlite: %w", err)
		}
		// One connection serialises writers; every transaction sees the previous commit.
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		db, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
