package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	// An explicitly named but missing file is an error.
	if _, err := Load(); err == nil {
		t.Fatal("Load() with missing CONFIG_FILE should fail")
	}

	os.Unsetenv("CONFIG_FILE")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DBPort != "5432" {
		t.Errorf("DBPort = %q, want 5432", cfg.DBPort)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server_port: \"9000\"\ndb_name: fromfile\njwt_secret: file-secret\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// File overrides defaults.
	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want 9000", cfg.ServerPort)
	}
	if cfg.DBName != "fromfile" {
		t.Errorf("DBName = %q, want fromfile", cfg.DBName)
	}
	// Env overrides the file.
	if cfg.JWTSecret != "env-secret" {
		t.Errorf("JWTSecret = %q, want env-secret", cfg.JWTSecret)
	}
	// Untouched keys keep their defaults.
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
}
