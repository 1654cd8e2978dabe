// Package render implements a second walk over each note's AST that emits
// HTML, consulting the frozen index and resolved links for link hrefs,
// anchor ids, and embed substitutions.
//
// goldmark gives no inline node its own byte range, so link-bearing
// inline nodes are matched to resolved Links by visiting them in the same
// left-to-right order the reference scanner found their Reference
// occurrences in (see internal/scan's extractReferences), rather than by
// a source-byte-range-to-Link lookup table.
package render

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"go.abhg.dev/goldmark/mermaid"

	"github.com/adamancini/obsidian-ssg/internal/config"
	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/mathrender"
	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/scan"
)

// Renderer renders one note at a time against the frozen Catalog.
type Renderer struct {
	Catalog     *index.Catalog
	Config      *config.Config
	Math        mathrender.Renderer
	Diagnostics *diag.List
}

// New creates a Renderer.
func New(cat *index.Catalog, cfg *config.Config, mathR mathrender.Renderer, diagnostics *diag.List) *Renderer {
	return &Renderer{Catalog: cat, Config: cfg, Math: mathR, Diagnostics: diagnostics}
}

// Result is one note's rendered output.
type Result struct {
	Body string // article HTML
	TOC  string // table-of-contents HTML
}

type state struct {
	r          *Renderer
	note       *scan.Note
	links      []model.Link // same order as note.References
	refIdx     int
	blocksByStart map[int]*model.Referenceable
	buf        strings.Builder
}

// Render emits one note's body HTML and TOC. links must be the resolved
// Links for note.References, in the same order.
func (r *Renderer) Render(note *scan.Note, links []model.Link) Result {
	st := &state{r: r, note: note, links: links, blocksByStart: make(map[int]*model.Referenceable)}
	for _, b := range note.Referenceables {
		if b.Kind == model.KindBlock && b.Identifier != "" {
			st.blocksByStart[b.Range.Start] = b
		}
	}

	for c := note.AST.FirstChild(); c != nil; c = c.NextSibling() {
		st.block(c)
	}

	return Result{Body: st.buf.String(), TOC: renderTOC(note.Referenceables)}
}

// nextLink consumes and returns the next resolved Link in document order.
func (s *state) nextLink() (model.Link, bool) {
	if s.refIdx >= len(s.links) {
		return model.Link{}, false
	}
	l := s.links[s.refIdx]
	s.refIdx++
	return l, true
}

func (s *state) identifierID(node ast.Node) string {
	rng := scan.RangeOfBlock(node)
	if b, ok := s.blocksByStart[rng.Start]; ok {
		return b.AnchorID()
	}
	return ""
}

// block renders one top-level-or-nested block node.
func (s *state) block(n ast.Node) {
	switch v := n.(type) {
	case *ast.Heading:
		rng := scan.RangeOfBlock(v)
		fmt.Fprintf(&s.buf, `<h%d id="%s">`, v.Level, rng.AnchorID())
		s.inlineChildren(v)
		fmt.Fprintf(&s.buf, "</h%d>\n", v.Level)

	case *ast.Paragraph:
		if s.note.Suppressed[n] {
			return
		}
		id := s.identifierID(n)
		s.openIdentified(id, "p")
		s.inlineChildren(v)
		s.closeIdentified(id, "p")

	case *ast.TextBlock:
		if s.note.Suppressed[n] {
			return
		}
		s.inlineChildren(v)
		s.buf.WriteString("\n")

	case *ast.List:
		id := s.identifierID(n)
		tag := "ul"
		var attrs string
		if v.IsOrdered() {
			tag = "ol"
			if v.Start != 1 {
				attrs = fmt.Sprintf(` start="%d"`, v.Start)
			}
		}
		s.openIdentifiedAttr(id, tag, attrs)
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
		s.closeIdentified(id, tag)

	case *ast.ListItem:
		id := s.identifierID(n)
		class := ""
		if first := v.FirstChild(); first != nil {
			if cb := firstTaskCheckbox(first); cb != nil {
				class = ` class="task-list-item"`
			}
		}
		if id != "" {
			fmt.Fprintf(&s.buf, `<li id="%s"%s>`, id, class)
		} else {
			fmt.Fprintf(&s.buf, "<li%s>", class)
		}
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
		s.buf.WriteString("</li>\n")

	case *ast.Blockquote:
		s.renderBlockquote(v)

	case *ast.CodeBlock:
		s.renderCodeBlock(languageOf(nil), segmentsText(v.Lines(), s.note.Body))

	case *ast.FencedCodeBlock:
		lang := languageOf(v.Language(s.note.Body))
		s.renderFencedCode(lang, segmentsText(v.Lines(), s.note.Body))

	case *mermaid.Block:
		// The mermaid extension's AST transformer replaces ```mermaid
		// fences with this node before the renderer sees them.
		s.renderDiagram(segmentsText(v.Lines(), s.note.Body), s.r.Config.MermaidRenderMode, "mermaid")

	case *ast.ThematicBreak:
		s.buf.WriteString("<hr>\n")

	case *ast.HTMLBlock:
		s.buf.Write(rawHTMLBlockBytes(v, s.note.Body))

	case *extast.Table:
		s.renderTable(v)

	case *extast.DefinitionList:
		s.buf.WriteString("<dl>\n")
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
		s.buf.WriteString("</dl>\n")
	case *extast.DefinitionTerm:
		s.buf.WriteString("<dt>")
		s.inlineChildren(v)
		s.buf.WriteString("</dt>\n")
	case *extast.DefinitionDescription:
		s.buf.WriteString("<dd>")
		s.inlineChildren(v)
		s.buf.WriteString("</dd>\n")

	case *extast.Footnote:
		fmt.Fprintf(&s.buf, `<li id="fn:%s">`, string(v.Ref))
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
		s.buf.WriteString("</li>\n")
	case *extast.FootnoteList:
		s.buf.WriteString(`<ol class="footnotes">` + "\n")
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
		s.buf.WriteString("</ol>\n")

	default:
		// Unhandled block kind: render children defensively rather than
		// drop content silently.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
	}
}

func (s *state) openIdentified(id, tag string) {
	s.openIdentifiedAttr(id, tag, "")
}

func (s *state) openIdentifiedAttr(id, tag, attrs string) {
	if id != "" {
		fmt.Fprintf(&s.buf, `<%s id="%s"%s>`, tag, id, attrs)
	} else {
		fmt.Fprintf(&s.buf, "<%s%s>", tag, attrs)
	}
}

func (s *state) closeIdentified(_ string, tag string) {
	fmt.Fprintf(&s.buf, "</%s>\n", tag)
}

func firstTaskCheckbox(n ast.Node) *extast.TaskCheckBox {
	if cb, ok := n.(*extast.TaskCheckBox); ok {
		return cb
	}
	if n.FirstChild() != nil {
		if cb, ok := n.FirstChild().(*extast.TaskCheckBox); ok {
			return cb
		}
	}
	return nil
}

func languageOf(lang []byte) string {
	return string(lang)
}

func segmentsText(lines *text.Segments, body []byte) string {
	if lines == nil {
		return ""
	}
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(body))
	}
	return b.String()
}

func (s *state) renderCodeBlock(_ string, raw string) {
	fmt.Fprintf(&s.buf, "<pre><code>%s</code></pre>\n", html.EscapeString(raw))
}

func (s *state) renderFencedCode(lang, raw string) {
	switch lang {
	case "mermaid":
		s.renderDiagram(raw, s.r.Config.MermaidRenderMode, "mermaid")
		return
	case "tikz":
		s.renderDiagram(raw, s.r.Config.TikzRenderMode, "tikz")
		return
	case "quiver":
		s.renderDiagram(raw, s.r.Config.QuiverRenderMode, "quiver")
		return
	}
	class := ""
	if lang != "" {
		class = fmt.Sprintf(` class="language-%s"`, html.EscapeString(lang))
	}
	fmt.Fprintf(&s.buf, "<pre><code%s>%s</code></pre>\n", class, html.EscapeString(raw))
}

// renderDiagram handles the mermaid/tikz/quiver build-time-vs-client-side
// family uniformly. None of the three has a build-time compiler wired in,
// so "build-time" degrades to emitting the raw source in a
// `<pre class="KIND KIND-fallback">` block and records a per-note
// diagnostic.
func (s *state) renderDiagram(raw string, mode config.RenderMode, kind string) {
	switch mode {
	case config.RenderClientSide:
		fmt.Fprintf(&s.buf, `<pre class="%s">%s</pre>`+"\n", kind, html.EscapeString(raw))
	case config.RenderRawLatex:
		fmt.Fprintf(&s.buf, `<span class="%s-raw">%s</span>`+"\n", kind, html.EscapeString(raw))
	default: // RenderBuildTime: no compiler wired, fall back honestly
		s.r.Diagnostics.Addf(diag.SeverityPerNote, s.note.Path, "%s build-time rendering unavailable, emitting raw source", kind)
		fmt.Fprintf(&s.buf, `<pre class="%s %s-fallback">%s</pre>`+"\n", kind, kind, html.EscapeString(raw))
	}
}

var calloutHeadRe = regexp.MustCompile(`^\[!(\w+)\]([+-])?\s*(.*)$`)

func (s *state) renderBlockquote(bq *ast.Blockquote) {
	first := bq.FirstChild()
	if p, ok := first.(*ast.Paragraph); ok {
		text := firstLineText(p, s.note.Body)
		if m := calloutHeadRe.FindStringSubmatch(text); m != nil {
			s.renderCallout(bq, p, m[1], m[2], m[3])
			return
		}
	}
	s.buf.WriteString("<blockquote>\n")
	for c := bq.FirstChild(); c != nil; c = c.NextSibling() {
		s.block(c)
	}
	s.buf.WriteString("</blockquote>\n")
}

func (s *state) renderCallout(bq *ast.Blockquote, headParagraph *ast.Paragraph, kind, fold, title string) {
	class := "callout callout-" + strings.ToLower(kind)
	foldAttr := ""
	if fold == "+" || fold == "-" {
		foldAttr = ` data-fold="` + fold + `"`
	}
	fmt.Fprintf(&s.buf, `<div class="%s"%s>`, class, foldAttr)
	fmt.Fprintf(&s.buf, `<div class="callout-title">%s</div>`, html.EscapeString(strings.TrimSpace(title)))
	s.buf.WriteString(`<div class="callout-content">`)
	for c := headParagraph.NextSibling(); c != nil; c = c.NextSibling() {
		s.block(c)
	}
	s.buf.WriteString("</div></div>\n")
	_ = bq
}

// firstLineText returns the plain text of a paragraph's first source line,
// used only to test for the callout `[!kind]` marker.
func firstLineText(p *ast.Paragraph, body []byte) string {
	lines := p.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	return strings.TrimSpace(string(lines.At(0).Value(body)))
}

func (s *state) renderTable(t *extast.Table) {
	s.buf.WriteString("<table>\n")
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch row := c.(type) {
		case *extast.TableHeader:
			s.buf.WriteString("<thead><tr>")
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				s.renderCell(cell.(*extast.TableCell), true)
			}
			s.buf.WriteString("</tr></thead>\n<tbody>\n")
		case *extast.TableRow:
			s.buf.WriteString("<tr>")
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				s.renderCell(cell.(*extast.TableCell), false)
			}
			s.buf.WriteString("</tr>\n")
		}
	}
	s.buf.WriteString("</tbody>\n</table>\n")
}

func (s *state) renderCell(cell *extast.TableCell, header bool) {
	tag := "td"
	if header {
		tag = "th"
	}
	style := alignStyle(cell.Alignment)
	fmt.Fprintf(&s.buf, "<%s%s>", tag, style)
	s.inlineChildren(cell)
	fmt.Fprintf(&s.buf, "</%s>", tag)
}

func alignStyle(a extast.Alignment) string {
	switch a {
	case extast.AlignLeft:
		return ` style="text-align:left"`
	case extast.AlignCenter:
		return ` style="text-align:center"`
	case extast.AlignRight:
		return ` style="text-align:right"`
	default:
		return ""
	}
}

func rawHTMLBlockBytes(v *ast.HTMLBlock, body []byte) []byte {
	var b []byte
	lines := v.Lines()
	for i := 0; i < lines.Len(); i++ {
		b = append(b, lines.At(i).Value(body)...)
	}
	if v.HasClosure() {
		b = append(b, v.ClosureLine.Value(body)...)
	}
	return b
}

// renderTOC builds a table of contents from a note's headings: one flat
// list in document order, each entry carrying a toc-level-N class for its
// heading level. The list itself is not nested.
func renderTOC(referenceables []*model.Referenceable) string {
	var headings []*model.Referenceable
	for _, r := range referenceables {
		if r.Kind == model.KindHeading {
			headings = append(headings, r)
		}
	}
	if len(headings) == 0 {
		return ""
	}
	sort.SliceStable(headings, func(i, j int) bool { return headings[i].Range.Start < headings[j].Range.Start })

	var b strings.Builder
	b.WriteString(`<nav class="toc"><ul>`)
	for _, h := range headings {
		fmt.Fprintf(&b, `<li class="toc-level-%d"><a href="#%s">%s</a></li>`,
			h.Level, h.AnchorID(), html.EscapeString(h.Text))
	}
	b.WriteString("</ul></nav>")
	return b.String()
}

// RenderBacklinks renders the backlinks footer for one note.
func RenderBacklinks(path string, backlinks map[string][]index.Backlink, cat *index.Catalog) string {
	entries := backlinks[path]
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="backlinks"><h2>Backlinks</h2><ul>`)
	for _, e := range entries {
		slug := cat.Slugs[e.SourceNote]
		title := cat.Titles[e.SourceNote]
		fmt.Fprintf(&b, `<li><a href="/%s">%s</a> (%d)</li>`, slug, html.EscapeString(title), e.Count)
	}
	b.WriteString("</ul></section>")
	return b.String()
}
