package config

import "testing"

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("HUGINN_DB_BACKEND", "postgres")
	t.Setenv("HUGINN_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("HUGINN_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Fatalf("unexpected backend: %q", cfg.DBBackend)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
}

func TestLoadDefaultsToSQLite(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("default backend = %q, want sqlite", cfg.DBBackend)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected a default sqlite DSN")
	}
}

func TestLoadRejectsMissingDSNForServerBackends(t *testing.T) {
	t.Setenv("HUGINN_DB_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without a postgres DSN")
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	t.Setenv("HUGINN_DB_BACKEND", "mongodb")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail for unsupported backend")
	}
}

func TestLoadEventBusSelection(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EventBus != EventBusLocal {
		t.Fatalf("default event bus = %q, want local", cfg.EventBus)
	}

	t.Setenv("HUGINN_EVENT_BUS", "nats")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EventBus != EventBusNATS {
		t.Fatalf("event bus = %q, want nats", cfg.EventBus)
	}

	t.Setenv("HUGINN_EVENT_BUS", "kafka")
	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail for unsupported event bus backend")
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) == 0 {
		t.Fatal("expected legacy env warnings")
	}
}

func TestLoadRejectsNonPositiveRefreshSeconds(t *testing.T) {
	t.Setenv("HUGINN_DEFAULT_REFRESH_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail for zero refresh interval")
	}
}
