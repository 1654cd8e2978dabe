package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamancini/obsidian-ssg/internal/config"
	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/markdown"
	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/scan"
)

func testWriter(t *testing.T) (*Writer, *index.Catalog) {
	t.Helper()
	md := markdown.New(markdown.Options{})
	diags := &diag.List{}
	note := scan.Parse(md, "a.md", []byte("---\ntitle: A Page\ntags:\n  - x\n  - y\ndraft: true\npublish: true\n---\n\n# A Page\n"), diags)
	cat := index.Build([]*scan.Note{note}, nil)

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	return New(cfg, cat), cat
}

func TestWritePage_WritesFileAtSlugPath(t *testing.T) {
	w, cat := testWriter(t)
	page := Page{Path: "a.md", Body: "<p>hi</p>"}

	if err := w.WritePage(page); err != nil {
		t.Fatalf("WritePage() error: %v", err)
	}

	dest := filepath.Join(w.Config.OutputDir, filepath.FromSlash(string(cat.Slugs["a.md"])))
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read written page: %v", err)
	}
	if !strings.Contains(string(data), "<p>hi</p>") {
		t.Errorf("page content = %q, want it to contain the rendered body", data)
	}
}

func TestWritePage_FrontmatterPanelShowsTagsAndDraftNotPublish(t *testing.T) {
	w, _ := testWriter(t)
	page := Page{Path: "a.md", Body: "<p>hi</p>"}
	if err := w.WritePage(page); err != nil {
		t.Fatalf("WritePage() error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(w.Config.OutputDir, "a.html"))
	out := string(data)
	if !strings.Contains(out, "badge-draft") {
		t.Errorf("expected a draft badge, got %q", out)
	}
	if !strings.Contains(out, "fm-tags") {
		t.Errorf("expected a tags list, got %q", out)
	}
	if strings.Contains(out, ">publish<") {
		t.Errorf("expected no publish row in the frontmatter panel, got %q", out)
	}
}

func TestRenderFrontmatterPanel_DateRendersAsTimeElement(t *testing.T) {
	fm := &model.Frontmatter{
		Keys: []string{"date"},
		Values: map[string]model.FMValue{
			"date": {Kind: model.FMString, String: "2026-01-15"},
		},
	}
	out := renderFrontmatterPanel(fm)
	if !strings.Contains(out, `<time datetime="2026-01-15">2026-01-15</time>`) {
		t.Errorf("panel = %q, want a <time> element for date", out)
	}
}

func TestWriteHome_ListsNotes(t *testing.T) {
	w, _ := testWriter(t)
	if err := w.WriteHome(); err != nil {
		t.Fatalf("WriteHome() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(w.Config.OutputDir, "home.html"))
	if err != nil {
		t.Fatalf("read home.html: %v", err)
	}
	if !strings.Contains(string(data), "A Page") {
		t.Errorf("home page = %q, want it to list note title 'A Page'", data)
	}
}

func TestWriteThemeAssets_WritesBaseAndThemeCSS(t *testing.T) {
	w, _ := testWriter(t)
	if err := w.WriteThemeAssets(); err != nil {
		t.Fatalf("WriteThemeAssets() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.Config.OutputDir, "styles", "base.css")); err != nil {
		t.Errorf("base.css not written: %v", err)
	}
	themePath := filepath.Join(w.Config.OutputDir, filepath.FromSlash(w.Config.ThemeCSSPath()))
	if _, err := os.Stat(themePath); err != nil {
		t.Errorf("theme css not written: %v", err)
	}
}

func TestWriteThemeAssets_UnknownThemeFallsBackToDefault(t *testing.T) {
	w, _ := testWriter(t)
	w.Config.Theme = "does-not-exist"
	if err := w.WriteThemeAssets(); err != nil {
		t.Fatalf("WriteThemeAssets() error: %v", err)
	}
	themePath := filepath.Join(w.Config.OutputDir, filepath.FromSlash(w.Config.ThemeCSSPath()))
	data, err := os.ReadFile(themePath)
	if err != nil {
		t.Fatalf("read fallback theme css: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty fallback theme css")
	}
}

func TestWriteAtomic_NoLeftoverTempFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.txt")
	if err := writeAtomic(dest, []byte("hello")); err != nil {
		t.Fatalf("writeAtomic() error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.txt" {
		t.Errorf("dir entries = %v, want exactly out.txt", entries)
	}
}
