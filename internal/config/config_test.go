package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Theme != "default" {
		t.Errorf("Theme = %q, want default", cfg.Theme)
	}
	if cfg.MermaidRenderMode != RenderClientSide {
		t.Errorf("MermaidRenderMode = %q, want %q", cfg.MermaidRenderMode, RenderClientSide)
	}
	if cfg.QuiverRenderMode != RenderRawLatex {
		t.Errorf("QuiverRenderMode = %q, want %q", cfg.QuiverRenderMode, RenderRawLatex)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers)
	}
}

func TestValidate_MissingVaultRoot(t *testing.T) {
	cfg := Default()
	cfg.VaultRoot = filepath.Join(t.TempDir(), "does-not-exist")
	cfg.OutputDir = t.TempDir()

	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a missing vault root")
	}
}

func TestValidate_VaultRootNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg := Default()
	cfg.VaultRoot = file
	cfg.OutputDir = t.TempDir()

	if err := cfg.Validate(); err == nil {
		t.Error("expected an error when vault root is a file, not a directory")
	}
}

func TestValidate_CreatesOutputDir(t *testing.T) {
	cfg := Default()
	cfg.VaultRoot = t.TempDir()
	cfg.OutputDir = filepath.Join(t.TempDir(), "nested", "output")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil || !info.IsDir() {
		t.Errorf("expected output dir %q to be created", cfg.OutputDir)
	}
}

func TestValidate_RejectsUnknownRenderMode(t *testing.T) {
	cfg := Default()
	cfg.VaultRoot = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.MermaidRenderMode = "bogus"

	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an invalid --mermaid-render-mode value")
	}
}

func TestThemeCSSPath(t *testing.T) {
	cfg := Default()
	cfg.Theme = "dark"
	want := filepath.Join("styles", "themes", "dark.css")
	if got := cfg.ThemeCSSPath(); got != want {
		t.Errorf("ThemeCSSPath() = %q, want %q", got, want)
	}
}
