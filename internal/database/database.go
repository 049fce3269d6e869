package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// ParseURL maps a DATABASE_URL onto a dialect and the DSN its driver expects.
//
//	postgres://u:p@host/db   -> postgres, unchanged
//	sqlite:///./agence.db    -> sqlite, ./agence.db
//	sqlite://agence.db       -> sqlite, agence.db
//	file:agence.db, agence.db -> sqlite, unchanged
func ParseURL(databaseURL string) (Dialect, string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DialectPostgres, u, nil
	case strings.HasPrefix(u, "sqlite:///"):
		return DialectSQLite, withPragmas(strings.TrimPrefix(u, "sqlite:///")), nil
	case strings.HasPrefix(u, "sqlite://"):
		return DialectSQLite, withPragmas(strings.TrimPrefix(u, "sqlite://")), nil
	case strings.Contains(u, "://"):
		return "", "", fmt.Errorf("unsupported database url scheme in %q", u)
	default:
		return DialectSQLite, withPragmas(u), nil
	}
}

func withPragmas(path string) string {
	if path == "" {
		path = "smart_agence.db"
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}

// Open connects to the store named by databaseURL. A nil log silences gorm.
func Open(databaseURL string, log gormlogger.Interface) (*gorm.DB, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	cfg := &gorm.Config{Logger: log, TranslateError: true}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; transactions never reach back to the pool
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Connect creates the Postgres database when missing, opens it and
// applies pending migrations.
func Connect(databaseURL string, log gormlogger.Interface) (*gorm.DB, error) {
	dialect, _, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if dialect == DialectPostgres {
		if err := ensureDatabase(databaseURL); err != nil {
			return nil, fmt.Errorf("ensure database: %w", err)
		}
	}
	db, err := Open(databaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := MigrateUp(db); err != nil {
		Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
