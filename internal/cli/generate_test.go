package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/adamancini/obsidian-ssg/internal/config"
)

func writeGenerateFixtureVault(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.md": "---\ntitle: Index\n---\n\n# Index\n\nSee [[Other Note]].\n",
		"other.md": "# Other Note\n\nBack to [[Index]].\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func resetGenFlags() {
	gen.outputDir = ""
	gen.theme = "default"
	gen.filterPublish = false
	gen.preserveSoftbreak = false
	gen.mermaidMode = "client-side"
	gen.tikzMode = "client-side"
	gen.quiverMode = "raw-latex"
	gen.customCalloutCSS = ""
	gen.workers = 0
	ExitCode = 0
}

func TestRunGenerate_WritesSiteAndExitsZero(t *testing.T) {
	resetGenFlags()
	vault := writeGenerateFixtureVault(t)
	gen.outputDir = t.TempDir()

	err := runGenerate(&cobra.Command{}, []string{vault})
	if err != nil {
		t.Fatalf("runGenerate() error: %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}

	if _, statErr := os.Stat(filepath.Join(gen.outputDir, "home.html")); statErr != nil {
		t.Errorf("home.html not written: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(gen.outputDir, "styles", "base.css")); statErr != nil {
		t.Errorf("base.css not written: %v", statErr)
	}
}

func TestRunGenerate_MissingVaultRootReturnsExitCode2(t *testing.T) {
	resetGenFlags()
	gen.outputDir = t.TempDir()

	err := runGenerate(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "does-not-exist")})
	if err == nil {
		t.Fatal("expected an error for a missing vault root")
	}
	var exitErr *ExitError
	if !asExitError(err, &exitErr) {
		t.Fatalf("err = %T, want *ExitError", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("exitErr.Code = %d, want 2", exitErr.Code)
	}
}

func TestRunGenerate_InvalidRenderModeReturnsExitCode1(t *testing.T) {
	resetGenFlags()
	vault := writeGenerateFixtureVault(t)
	gen.outputDir = t.TempDir()
	gen.mermaidMode = "not-a-real-mode"

	err := runGenerate(&cobra.Command{}, []string{vault})
	if err == nil {
		t.Fatal("expected an error for an invalid --mermaid-render-mode value")
	}
	var exitErr *ExitError
	if !asExitError(err, &exitErr) {
		t.Fatalf("err = %T, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exitErr.Code = %d, want 1", exitErr.Code)
	}
}

func asExitError(err error, target **ExitError) bool {
	e, ok := err.(*ExitError)
	if ok {
		*target = e
	}
	return ok
}

func TestClassifyValidationError(t *testing.T) {
	cfg := config.Default()
	cfg.VaultRoot = filepath.Join(t.TempDir(), "missing")
	if got := classifyValidationError(cfg, os.ErrNotExist); got != 2 {
		t.Errorf("classifyValidationError() = %d, want 2 for a missing vault root", got)
	}

	cfg.VaultRoot = t.TempDir()
	if got := classifyValidationError(cfg, os.ErrInvalid); got != 1 {
		t.Errorf("classifyValidationError() = %d, want 1 when the vault root exists", got)
	}
}

func TestExitError_ErrorAndUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	e := &ExitError{Code: 2, Err: cause}
	if e.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", e.Error(), cause.Error())
	}
	if e.Unwrap() != cause {
		t.Error("Unwrap() should return the wrapped cause")
	}
}
