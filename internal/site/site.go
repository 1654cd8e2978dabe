// Package site assembles rendered note bodies into full HTML pages
// (skeleton, frontmatter panel, sidebar nav, TOC, backlinks), writing them
// and copied vault assets to the output directory atomically.
package site

import (
	"fmt"
	"html"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/config"
	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/model"
)

// Page is everything needed to assemble one note's output HTML file.
type Page struct {
	Path      string // vault-relative note path
	Body      string // rendered article HTML
	TOC       string // rendered table-of-contents HTML
	Backlinks string // rendered backlinks HTML
}

// Writer assembles and writes the generated site.
type Writer struct {
	Config  *config.Config
	Catalog *index.Catalog
}

// New builds a Writer.
func New(cfg *config.Config, cat *index.Catalog) *Writer {
	return &Writer{Config: cfg, Catalog: cat}
}

// WritePage renders p's full HTML page and writes it under OutputDir at the
// path its slug names.
func (w *Writer) WritePage(p Page) error {
	out := w.renderPage(p)
	dest := filepath.Join(w.Config.OutputDir, filepath.FromSlash(string(w.Catalog.Slugs[p.Path])))
	return writeAtomic(dest, []byte(out))
}

// WriteHome writes the vault's landing page: a flat list of every note,
// linked by title.
func (w *Writer) WriteHome() error {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Vault</title>\n")
	w.writeStylesheetLinks(&b)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(w.renderSidebar(""))
	b.WriteString("<main>\n<h1>Vault</h1>\n<ul class=\"note-index\">\n")
	notes := make([]string, len(w.Catalog.Notes))
	copy(notes, w.Catalog.Notes)
	sort.Strings(notes)
	for _, path := range notes {
		fmt.Fprintf(&b, "<li><a href=\"/%s\">%s</a></li>\n", w.Catalog.Slugs[path], html.EscapeString(w.Catalog.Titles[path]))
	}
	b.WriteString("</ul>\n</main>\n</body>\n</html>\n")
	return writeAtomic(filepath.Join(w.Config.OutputDir, "home.html"), []byte(b.String()))
}

// CopyAsset copies the vault asset at assetPath (vault-relative) into the
// output directory at the same relative location.
func (w *Writer) CopyAsset(vaultRoot, assetPath string) error {
	src := filepath.Join(vaultRoot, filepath.FromSlash(assetPath))
	dst := filepath.Join(w.Config.OutputDir, filepath.FromSlash(assetPath))
	return copyFileAtomic(src, dst)
}

// WriteThemeAssets copies the bundled base stylesheet, the selected theme's
// stylesheet, and (if configured) the user's custom callout overrides into
// the output directory's styles/ tree.
func (w *Writer) WriteThemeAssets() error {
	if err := writeAtomic(filepath.Join(w.Config.OutputDir, "styles", "base.css"), []byte(baseCSS)); err != nil {
		return err
	}
	themeCSS, ok := bundledThemes[w.Config.Theme]
	if !ok {
		themeCSS = bundledThemes["default"]
	}
	if err := writeAtomic(filepath.Join(w.Config.OutputDir, w.Config.ThemeCSSPath()), []byte(themeCSS)); err != nil {
		return err
	}
	if w.Config.CustomCalloutCSS != "" {
		if err := copyFileAtomic(w.Config.CustomCalloutCSS, filepath.Join(w.Config.OutputDir, "styles", "custom-callout.css")); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeStylesheetLinks(b *strings.Builder) {
	b.WriteString(`<link rel="stylesheet" href="/styles/base.css">` + "\n")
	fmt.Fprintf(b, `<link rel="stylesheet" href="/%s">`+"\n", filepath.ToSlash(w.Config.ThemeCSSPath()))
	if w.Config.CustomCalloutCSS != "" {
		b.WriteString(`<link rel="stylesheet" href="/styles/custom-callout.css">` + "\n")
	}
}

// renderPage assembles the full HTML document for one note. Within the
// page, body precedes the TOC sidebar which precedes the backlinks footer —
// a fixed order, so rendering is deterministic given the same input.
func (w *Writer) renderPage(p Page) string {
	var b strings.Builder
	title := w.Catalog.Titles[p.Path]

	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	w.writeStylesheetLinks(&b)
	b.WriteString("</head>\n<body>\n")

	b.WriteString(w.renderSidebar(p.Path))

	b.WriteString("<main>\n")
	fmt.Fprintf(&b, "<h1 class=\"page-title\">%s</h1>\n", html.EscapeString(title))
	b.WriteString(renderFrontmatterPanel(w.Catalog.Frontmatter[p.Path]))
	b.WriteString("<article>\n")
	b.WriteString(p.Body)
	b.WriteString("\n</article>\n")
	if p.TOC != "" {
		b.WriteString(p.TOC)
		b.WriteString("\n")
	}
	if p.Backlinks != "" {
		b.WriteString(p.Backlinks)
		b.WriteString("\n")
	}
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.String()
}

// renderSidebar builds a directory-grouped nav of every note, marking
// activePath's entry current.
func (w *Writer) renderSidebar(activePath string) string {
	notes := make([]string, len(w.Catalog.Notes))
	copy(notes, w.Catalog.Notes)
	sort.Strings(notes)

	var b strings.Builder
	b.WriteString(`<nav class="sidebar">` + "\n<ul>\n")
	fmt.Fprintf(&b, "<li><a href=\"/home.html\">Home</a></li>\n")
	for _, path := range notes {
		class := ""
		if path == activePath {
			class = ` class="active"`
		}
		fmt.Fprintf(&b, "<li%s><a href=\"/%s\">%s</a></li>\n", class, w.Catalog.Slugs[path], html.EscapeString(w.Catalog.Titles[path]))
	}
	b.WriteString("</ul>\n</nav>\n")
	return b.String()
}

// renderFrontmatterPanel renders the visible subset of a note's frontmatter:
// title drives <title>/<h1> elsewhere so it's skipped here; draft flags a
// status badge; tags render as a tag list; date renders as a <time>
// element; publish is a filtering control only, never displayed; every
// remaining key renders generically.
func renderFrontmatterPanel(fm *model.Frontmatter) string {
	if fm == nil || len(fm.Keys) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<aside class="frontmatter">` + "\n")
	for _, k := range fm.Keys {
		v := fm.Values[k]
		switch k {
		case "title", "publish":
			continue
		case "draft":
			if fmTruthy(v) {
				b.WriteString(`<span class="badge badge-draft">draft</span>` + "\n")
			}
		case "tags":
			if v.Kind == model.FMList {
				b.WriteString(`<ul class="fm-tags">` + "\n")
				for _, t := range v.List {
					fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(fmScalar(t)))
				}
				b.WriteString("</ul>\n")
			}
		case "date":
			d := html.EscapeString(fmScalar(v))
			fmt.Fprintf(&b, `<div class="fm-row"><span class="fm-key">date</span><time datetime="%s">%s</time></div>`+"\n", d, d)
		default:
			fmt.Fprintf(&b, `<div class="fm-row"><span class="fm-key">%s</span><span class="fm-value">%s</span></div>`+"\n",
				html.EscapeString(k), html.EscapeString(fmScalar(v)))
		}
	}
	b.WriteString("</aside>\n")
	return b.String()
}

func fmTruthy(v model.FMValue) bool {
	return v.Kind == model.FMString && (v.String == "true" || v.String == "yes")
}

func fmScalar(v model.FMValue) string {
	switch v.Kind {
	case model.FMString:
		return v.String
	case model.FMList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = fmScalar(e)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
