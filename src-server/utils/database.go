package utils

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// OpenDB opens the ticket store behind databaseURL:
//   - postgres://... or postgresql://... via lib/pq
//   - sqlite://<path>, file:<path> or :memory: via sqliteshim
func OpenDB(databaseURL string) (*bun.DB, error) {
	var (
		rawDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"):
		rawDB, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("OpenDB: can't open postgres database: %w", err)
		}
		rawDB.SetMaxIdleConns(8)
		db = bun.NewDB(rawDB, pgdialect.New())
	case strings.HasPrefix(databaseURL, "sqlite://"),
		strings.HasPrefix(databaseURL, "file:"),
		databaseURL == ":memory:":
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		rawDB, err = sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, fmt.Errorf("OpenDB: can't open sqlite database: %w", err)
		}
		// sqlite serialises writers anyway, and ":memory:" lives and dies
		// with its single connection
		rawDB.SetMaxOpenConns(1)
		db = bun.NewDB(rawDB, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("OpenDB: unsupported database url %q", redact(databaseURL))
	}

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return db, nil
}
