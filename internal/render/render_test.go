package render

import (
	"strings"
	"testing"

	"github.com/adamancini/obsidian-ssg/internal/config"
	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/markdown"
	"github.com/adamancini/obsidian-ssg/internal/mathrender"
	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/resolve"
	"github.com/adamancini/obsidian-ssg/internal/scan"
)

func render(t *testing.T, path, content string, cfg *config.Config) (Result, *scan.Note, *index.Catalog) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	md := markdown.New(markdown.Options{})
	diags := &diag.List{}
	note := scan.Parse(md, path, []byte(content), diags)
	cat := index.Build([]*scan.Note{note}, nil)
	links := resolve.New(cat).Resolve(note.References)
	r := New(cat, cfg, &mathrender.NoopRenderer{}, diags)
	return r.Render(note, links), note, cat
}

func TestRender_HeadingEmitsAnchoredTag(t *testing.T) {
	res, _, _ := render(t, "a.md", "# Hello World\n", nil)
	if !strings.Contains(res.Body, "<h1 id=") {
		t.Errorf("body = %q, want an <h1 id=...> heading", res.Body)
	}
}

func TestRender_UnresolvedLinkGetsUnresolvedClass(t *testing.T) {
	res, _, _ := render(t, "a.md", "See [[Missing Note]].\n", nil)
	if !strings.Contains(res.Body, `class="internal-link unresolved"`) {
		t.Errorf("body = %q, want an unresolved internal-link span", res.Body)
	}
}

func TestRender_ExternalMarkdownLinkBypassesResolution(t *testing.T) {
	res, _, _ := render(t, "a.md", "[site](https://example.com)\n", nil)
	if !strings.Contains(res.Body, `href="https://example.com"`) {
		t.Errorf("body = %q, want a direct external href", res.Body)
	}
	if strings.Contains(res.Body, "unresolved") {
		t.Errorf("external link must not be treated as an unresolved internal link: %q", res.Body)
	}
}

func TestRender_CalloutBlockquote(t *testing.T) {
	res, _, _ := render(t, "a.md", "> [!note] A title\n> Body text.\n", nil)
	if !strings.Contains(res.Body, `class="callout callout-note"`) {
		t.Errorf("body = %q, want a callout div", res.Body)
	}
}

func TestRender_TaskListItem(t *testing.T) {
	res, _, _ := render(t, "a.md", "- [x] done\n- [ ] not done\n", nil)
	if !strings.Contains(res.Body, `checked disabled`) || !strings.Contains(res.Body, `task-list-item`) {
		t.Errorf("body = %q, want checked task-list markup", res.Body)
	}
}

func TestRender_SuperscriptAndSubscript(t *testing.T) {
	res, _, _ := render(t, "a.md", "x^2^ and H~2~O.\n", nil)
	if !strings.Contains(res.Body, "<sup>2</sup>") {
		t.Errorf("body = %q, want <sup>2</sup>", res.Body)
	}
	if !strings.Contains(res.Body, "<sub>2</sub>") {
		t.Errorf("body = %q, want <sub>2</sub>", res.Body)
	}
}

func TestRender_MathFallsBackOnNoopRenderer(t *testing.T) {
	res, _, _ := render(t, "a.md", "Inline math $x^2$ here.\n", nil)
	if !strings.Contains(res.Body, `class="math-error"`) {
		t.Errorf("body = %q, want a math-error fallback span", res.Body)
	}
}

func TestRender_MermaidBuildTimeFallsBackToRawSource(t *testing.T) {
	cfg := config.Default()
	cfg.MermaidRenderMode = config.RenderBuildTime
	res, _, _ := render(t, "a.md", "```mermaid\ngraph TD; A-->B;\n```\n", cfg)
	if !strings.Contains(res.Body, "mermaid-fallback") {
		t.Errorf("body = %q, want a mermaid-fallback pre block", res.Body)
	}
}

func TestRenderTOC_ListsHeadingsInDocumentOrder(t *testing.T) {
	res, _, _ := render(t, "a.md", "# One\n\nbody\n\n## Two\n", nil)
	oneIdx := strings.Index(res.TOC, "One")
	twoIdx := strings.Index(res.TOC, "Two")
	if oneIdx == -1 || twoIdx == -1 || oneIdx > twoIdx {
		t.Errorf("TOC = %q, want One before Two", res.TOC)
	}
}

func TestRenderBacklinks_EmptyWhenNoneExist(t *testing.T) {
	_, note, cat := render(t, "a.md", "# Hi\n", nil)
	out := RenderBacklinks(note.Path, map[string][]index.Backlink{}, cat)
	if out != "" {
		t.Errorf("expected empty backlinks section, got %q", out)
	}
}

func TestRenderBacklinks_ListsSourceAndCount(t *testing.T) {
	_, note, cat := render(t, "b.md", "# Hi\n", nil)
	backlinks := map[string][]index.Backlink{
		"b.md": {{SourceNote: "a.md", Count: 2}},
	}
	cat.Titles["a.md"] = "A"
	cat.Slugs["a.md"] = model.Slug("a.html")
	out := RenderBacklinks(note.Path, backlinks, cat)
	if !strings.Contains(out, "A") || !strings.Contains(out, "(2)") {
		t.Errorf("backlinks = %q, want source title A and count (2)", out)
	}
}
