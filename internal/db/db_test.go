package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLiteResolvesDialect(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "test.db"))
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if got := DialectName(conn); got != DialectSQLite {
		t.Fatalf("dialect = %q, want %q", got, DialectSQLite)
	}
	if !IsSQLite(conn) {
		t.Fatal("IsSQLite = false for a sqlite connection")
	}
	if errPing := Ping(conn); errPing != nil {
		t.Fatalf("ping: %v", errPing)
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, errOpen := Open("  "); errOpen == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpenRejectsMalformedPostgresDSN(t *testing.T) {
	if _, errOpen := Open("postgres://user@host:notaport/db"); errOpen == nil {
		t.Fatal("expected error for malformed postgres dsn")
	}
}

func TestDialectNameNilConnection(t *testing.T) {
	if got := DialectName(nil); got != "" {
		t.Fatalf("dialect for nil connection = %q, want empty", got)
	}
	if errPing := Ping(nil); errPing == nil {
		t.Fatal("expected error pinging nil connection")
	}
}
