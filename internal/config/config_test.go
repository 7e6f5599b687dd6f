package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_ENV", "doesnotexist")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode = %q, want release", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.SendBuffer != 32 {
		t.Errorf("send_buffer = %d, want 32", cfg.SendBuffer)
	}
	if cfg.DBPath != "" {
		t.Errorf("db_path = %q, want empty", cfg.DBPath)
	}
}

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestLoad_FromFile(t *testing.T) {
	chtemp(t)

	if err := os.Mkdir("config", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "mode: debug\nport: 9999\nsecret: s3cret\ndb_path: ./meet.db\n"
	if err := os.WriteFile(filepath.Join("config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9999 || cfg.Secret != "s3cret" || cfg.DBPath != "./meet.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Keys absent from the file keep their defaults.
	if cfg.ReadLimit != 32768 {
		t.Errorf("read_limit = %d, want 32768", cfg.ReadLimit)
	}
}

func TestLoad_UnparseableValueReturnsNilConfig(t *testing.T) {
	chtemp(t)

	if err := os.Mkdir("config", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "port: twelve\n"
	if err := os.WriteFile(filepath.Join("config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
	// Callers must treat the error as fatal: there is no config to fall
	// back on.
	if cfg != nil {
		t.Fatalf("cfg = %+v on error, want nil", cfg)
	}
}
