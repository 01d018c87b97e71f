package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
)

// Open connects to the database described by dsn. Postgres DSNs are
// validated with pgx before GORM sees them; `file:` DSNs open SQLite.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}

	if isSQLiteDSN(dsn) {
		conn, errOpen := gorm.Open(sqlite.Open(dsn), gormCfg)
		if errOpen != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", errOpen)
		}
		return conn, nil
	}

	if _, errParse := pgx.ParseConfig(dsn); errParse != nil {
		return nil, fmt.Errorf("db: invalid postgres dsn: %w", errParse)
	}
	conn, errOpen := gorm.Open(postgres.Open(dsn), gormCfg)
	if errOpen != nil {
		return nil, fmt.Errorf("db: open postgres: %w", errOpen)
	}
	return conn, nil
}

// isSQLiteDSN reports whether the DSN addresses a SQLite database.
func isSQLiteDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return false
	}
	return strings.HasPrefix(lower, "file:") ||
		strings.HasSuffix(lower, ".db") ||
		strings.HasSuffix(lower, ".sqlite") ||
		strings.Contains(lower, ":memory:")
}

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// Ping verifies the underlying connection is alive.
func Ping(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return fmt.Errorf("db: get sql db: %w", errDB)
	}
	return sqlDB.Ping()
}
