package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Definitions != "interface-definitions" {
		t.Errorf("expected default definitions 'interface-definitions', got %s", cfg.Definitions)
	}
	if cfg.Pattern != "*.xml.in" {
		t.Errorf("expected default pattern '*.xml.in', got %s", cfg.Pattern)
	}
	if cfg.Include.MaxDepth != 32 {
		t.Errorf("expected default max depth 32, got %d", cfg.Include.MaxDepth)
	}
	if cfg.Merge.RootPolicy != "recursive" {
		t.Errorf("expected default root policy 'recursive', got %s", cfg.Merge.RootPolicy)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected default format 'json', got %s", cfg.Output.Format)
	}
	if cfg.Serve.Addr != "127.0.0.1:8484" {
		t.Errorf("expected default addr '127.0.0.1:8484', got %s", cfg.Serve.Addr)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
definitions: defs
pattern: "*.xml"
include:
  max_depth: 4
  folder: shared
merge:
  root_policy: partition
output:
  format: yaml
  path: build/schema.yaml
log:
  level: debug
  format: json
watch:
  debounce: 250ms
`
	if err := os.WriteFile(FileName, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Definitions != "defs" || cfg.Pattern != "*.xml" {
		t.Errorf("unexpected document settings: %+v", cfg)
	}
	if cfg.Include.MaxDepth != 4 || cfg.Include.Folder != "shared" {
		t.Errorf("unexpected include settings: %+v", cfg.Include)
	}
	if cfg.Merge.RootPolicy != "partition" {
		t.Errorf("expected root policy 'partition', got %s", cfg.Merge.RootPolicy)
	}
	if cfg.Output.Format != "yaml" || cfg.Output.Path != "build/schema.yaml" {
		t.Errorf("unexpected output settings: %+v", cfg.Output)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log settings: %+v", cfg.Log)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	// Untouched keys keep their defaults
	if cfg.Serve.Addr != "127.0.0.1:8484" {
		t.Errorf("expected default addr, got %s", cfg.Serve.Addr)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(path, []byte("definitions: elsewhere\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Definitions != "elsewhere" {
		t.Errorf("expected definitions 'elsewhere', got %s", cfg.Definitions)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SCHEMAC_MERGE_ROOT_POLICY", "partition")
	t.Setenv("SCHEMAC_INCLUDE_MAX_DEPTH", "8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Merge.RootPolicy != "partition" {
		t.Errorf("expected root policy from environment, got %s", cfg.Merge.RootPolicy)
	}
	if cfg.Include.MaxDepth != 8 {
		t.Errorf("expected max depth from environment, got %d", cfg.Include.MaxDepth)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"root policy", "merge:\n  root_policy: union\n", "merge.root_policy"},
		{"format", "output:\n  format: toml\n", "output.format"},
		{"max depth", "include:\n  max_depth: 0\n", "include.max_depth"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"log format", "log:\n  format: xml\n", "log.format"},
		{"pattern", "pattern: \"[\"\n", "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			if err := os.WriteFile(FileName, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Load("")
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg := Default()
	cfg.Definitions = "defs"
	cfg.Merge.RootPolicy = "partition"
	cfg.Watch.Debounce = time.Second

	if err := Save(cfg, FileName); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !Exists(dir) {
		t.Fatal("expected config file to exist after Save")
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}

	bad := Default()
	bad.Include.MaxDepth = -1
	if err := Save(bad, filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("expected Save to reject an invalid config")
	}
}

func TestFindRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	subDir := filepath.Join(tmpDir, "interface-definitions", "include")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, subDir)

	root, err := FindRoot()
	if err != nil {
		t.Fatalf("expected to find root, got error: %v", err)
	}

	// On macOS, /tmp is symlinked to /private/tmp, so resolve both paths
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedTmpDir, _ := filepath.EvalSymlinks(tmpDir)
	if resolvedRoot != resolvedTmpDir {
		t.Errorf("expected root to be %s, got %s", resolvedTmpDir, resolvedRoot)
	}
}

func TestFindRootNotFound(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := FindRoot(); err == nil {
		t.Error("expected error when no config exists, got nil")
	}
}
