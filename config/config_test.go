package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generate.OutputSuffix != "_fng.go" {
		t.Errorf("expected OutputSuffix=_fng.go, got %s", cfg.Generate.OutputSuffix)
	}
	if cfg.Generate.TuplePackage != "fngroup/tuple" {
		t.Errorf("expected TuplePackage=fngroup/tuple, got %s", cfg.Generate.TuplePackage)
	}
	if !cfg.Generate.LineDirectives {
		t.Error("expected LineDirectives enabled by default")
	}
	if cfg.Generate.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Generate.Workers)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	content := `
generate:
  output_suffix: .gen.go
  line_directives: false
  workers: 2
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generate.OutputSuffix != ".gen.go" {
		t.Errorf("expected OutputSuffix=.gen.go, got %s", cfg.Generate.OutputSuffix)
	}
	if cfg.Generate.LineDirectives {
		t.Error("expected LineDirectives=false")
	}
	if cfg.Generate.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Generate.Workers)
	}
	// untouched keys keep their defaults
	if cfg.Generate.TuplePackage != "fngroup/tuple" {
		t.Errorf("expected default TuplePackage, got %s", cfg.Generate.TuplePackage)
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v (%v)", level, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"suffix", "generate:\n  output_suffix: .txt\n"},
		{"workers", "generate:\n  workers: -1\n"},
		{"level", "logging:\n  level: loud\n"},
		{"format", "logging:\n  format: xml\n"},
		{"yaml", "generate: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, Dir, "config.yaml")

	content := `
generate:
  tuple_package: example.com/rt/tuple
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Generate.TuplePackage != "example.com/rt/tuple" {
		t.Errorf("expected TuplePackage=example.com/rt/tuple, got %s", cfg.Generate.TuplePackage)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Generate.FixImports = true

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Generate.FixImports {
		t.Error("expected FixImports to survive a save")
	}
}

func TestOutputPath(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.OutputPath(filepath.Join("pkg", "math.fng"))
	expected := filepath.Join("pkg", "math_fng.go")
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestCacheDBPath(t *testing.T) {
	cfg := DefaultConfig()
	path := cfg.CacheDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".fngroup", "cache.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}

	cfg.Cache.Path = "/tmp/fng.db"
	if got := cfg.CacheDBPath("/home/user/project"); got != "/tmp/fng.db" {
		t.Errorf("expected absolute path kept, got %s", got)
	}
}
