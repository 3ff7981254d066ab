package config

import (
	"os"
	"path/filepath"
	"testing"
)

func resetEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"SOURCE_URL", "SYNC_TRIGGER_DIR", "PAGE_SIZE", "FETCH_RETRIES",
		"HTTP_PORT", "PORT", "STRICT_CONFIG",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	resetEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":3000" {
		t.Fatalf("HTTPPort = %q, want :3000", cfg.HTTPPort)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Fatalf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.DBPath != "trees.db" {
		t.Fatalf("DBPath = %q, want trees.db", cfg.DBPath)
	}
	if cfg.DBPort != 3306 {
		t.Fatalf("DBPort = %d, want 3306", cfg.DBPort)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("PageSize = %d, want 100", cfg.PageSize)
	}
	if cfg.FetchRetries != 3 {
		t.Fatalf("FetchRetries = %d, want 3", cfg.FetchRetries)
	}
	if cfg.SourceURL == "" {
		t.Fatal("SourceURL should default to the public collection endpoint")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	resetEnv(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("SOURCE_URL", "https://example.test/records/")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("SYNC_TRIGGER_DIR", "/tmp/triggers")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":8080" {
		t.Fatalf("HTTPPort = %q, want :8080", cfg.HTTPPort)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.SourceURL != "https://example.test/records" {
		t.Fatalf("SourceURL = %q, trailing slash should be trimmed", cfg.SourceURL)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.FetchRetries != 5 {
		t.Fatalf("FetchRetries = %d, want 5", cfg.FetchRetries)
	}
	if cfg.TriggerDir != "/tmp/triggers" {
		t.Fatalf("TriggerDir = %q", cfg.TriggerDir)
	}
}

func TestLoadLegacyPort(t *testing.T) {
	resetEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":9000" {
		t.Fatalf("HTTPPort = %q, want :9000", cfg.HTTPPort)
	}
}

func TestLoadPageSizeCap(t *testing.T) {
	resetEnv(t)
	t.Setenv("PAGE_SIZE", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 100 {
		t.Fatalf("PageSize = %d, want cap of 100", cfg.PageSize)
	}
}

func TestLoadStrictRejectsBadDriver(t *testing.T) {
	resetEnv(t)
	t.Setenv("STRICT_CONFIG", "1")
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver under strict config")
	}
}

func TestLoadStrictMySQLRequiresHost(t *testing.T) {
	resetEnv(t)
	t.Setenv("STRICT_CONFIG", "true")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_NAME", "trees")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for mysql driver without DB_HOST")
	}

	t.Setenv("DB_HOST", "localhost")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != DriverMySQL {
		t.Fatalf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
}

func TestLoadFileConfig(t *testing.T) {
	resetEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "http_port: \"4000\"\npage_size: 50\ndb_path: /tmp/from-file.db\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":4000" {
		t.Fatalf("HTTPPort = %q, want :4000", cfg.HTTPPort)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("PageSize = %d, want 50", cfg.PageSize)
	}
	if cfg.DBPath != "/tmp/from-file.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}

	// env still wins over the file
	t.Setenv("PAGE_SIZE", "10")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("PageSize = %d, want env override 10", cfg.PageSize)
	}
}
