package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/dbprime/errors"
)

type testConfig struct {
	Driver     string            `mapstructure:"driver" validate:"required,oneof=postgres mysql sqlite"`
	Connection map[string]string `mapstructure:"connection"`
	Database   struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"database"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dbprime.yml", `
driver: postgres
connection:
  host: db.local
  user: root
database:
  log_level: warn
`)

	var cfg testConfig
	if err := LoadConfig("dbprime", &cfg, WithConfigFile(path), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Driver != "postgres" {
		t.Errorf("expected driver 'postgres', got %q", cfg.Driver)
	}
	if cfg.Connection["host"] != "db.local" {
		t.Errorf("expected host 'db.local', got %q", cfg.Connection["host"])
	}
	if cfg.Database.LogLevel != "warn" {
		t.Errorf("expected log_level 'warn', got %q", cfg.Database.LogLevel)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dbprime.yml", `
driver: postgres
connection:
  host: db.local
`)
	t.Setenv("DBPRIME_DRIVER", "mysql")
	t.Setenv("DBPRIME_CONNECTION_HOST", "127.0.0.1")
	t.Setenv("DBPRIME_DATABASE_LOG_LEVEL", "error")

	var cfg testConfig
	if err := LoadConfig("dbprime", &cfg, WithConfigFile(path), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Driver != "mysql" {
		t.Errorf("expected env to override driver, got %q", cfg.Driver)
	}
	if cfg.Connection["host"] != "127.0.0.1" {
		t.Errorf("expected env to override host, got %q", cfg.Connection["host"])
	}
	if cfg.Database.LogLevel != "error" {
		t.Errorf("expected env to set log_level, got %q", cfg.Database.LogLevel)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DBPRIME_CONNECTION_PASSWORD=from-dotenv\n")
	t.Setenv("DBPRIME_CONNECTION_PASSWORD", "")
	os.Unsetenv("DBPRIME_CONNECTION_PASSWORD")

	var cfg testConfig
	if err := LoadConfig("dbprime", &cfg, WithConfigFile("/nonexistent/dbprime.yml"), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Connection["password"] != "from-dotenv" {
		t.Errorf("expected password from .env, got %q", cfg.Connection["password"])
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dbprime.yml", "driver: [unterminated\n")

	var cfg testConfig
	if err := LoadConfig("dbprime", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./testdata/dbprime.yml": true,
		"../dbprime.yml":         true,
		"../.env":                true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("dbprime", LoaderConfig{})
	if files.ConfigFile != "./testdata/dbprime.yml" {
		t.Errorf("expected ./testdata/dbprime.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "../.env" {
		t.Errorf("expected ../.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("dbprime", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("explicit paths should win, got %+v", files)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/dbprime.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/dbprime.yml" {
		t.Errorf("unexpected config file %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected env file %q", lc.EnvFile)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"DRIVER", []string{"driver"}},
		{"CONNECTION_HOST", []string{"connection_host", "connection.host"}},
		{"DATABASE_LOG_LEVEL", []string{"database_log_level", "database.log.level", "database.log_level", "database_log.level"}},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got := generateEnvKeyVariants(tc.key)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("variants = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := Validate(&testConfig{Driver: "sqlite"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing driver", func(t *testing.T) {
		err := Validate(&testConfig{})
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.HasCode(err, errors.ErrCodeValidation) {
			t.Errorf("expected VALIDATION code, got %v", err)
		}
		if !strings.Contains(err.Error(), "driver: is required") {
			t.Errorf("expected field message, got %q", err.Error())
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		err := Validate(&testConfig{Driver: "oracle"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "must be one of") {
			t.Errorf("expected oneof message, got %q", err.Error())
		}
	})
}
