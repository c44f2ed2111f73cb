package utils

import (
	"crypto/tls"
	"path/filepath"
	"testing"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "split")
	t.Setenv("PG_PASSWORD", "p@ss")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	got := BuildPostgresDSNFromEnv()
	want := "postgres://split:p%40ss@db:6543/polysplit?sslmode=disable"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestPostgresEnabled(t *testing.T) {
	t.Setenv("DB_ENABLE", "")
	t.Setenv("PG_HOST", "")
	if PostgresEnabled() {
		t.Error("no config must disable the store")
	}
	t.Setenv("PG_HOST", "db")
	if !PostgresEnabled() {
		t.Error("PG_HOST must enable the store")
	}
	t.Setenv("DB_ENABLE", "false")
	if PostgresEnabled() {
		t.Error("DB_ENABLE=false must win")
	}
}

func TestOpenRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_ENABLE", "")
	if c := OpenRedisFromEnv(); c != nil {
		t.Error("expected nil client")
	}
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	if err := EnsureSelfSignedCert(cert, key, "polysplit.local"); err != nil {
		t.Fatal(err)
	}
	if _, err := tls.LoadX509KeyPair(cert, key); err != nil {
		t.Fatalf("generated pair does not load: %v", err)
	}
	if err := EnsureSelfSignedCert(cert, key, "polysplit.local"); err != nil {
		t.Fatal(err)
	}
}
