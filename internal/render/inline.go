package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	obsidianhashtag "go.abhg.dev/goldmark/hashtag"
	"go.abhg.dev/goldmark/wikilink"

	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/markdown/mathext"
	"github.com/adamancini/obsidian-ssg/internal/markdown/supsub"
	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/resolve"
	"github.com/adamancini/obsidian-ssg/internal/scan"
)

func (s *state) inlineChildren(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s.inline(c)
	}
}

func (s *state) inline(n ast.Node) {
	switch v := n.(type) {
	case *ast.Text:
		for _, r := range s.note.SuppressedRanges {
			if v.Segment.Start >= r.Start && v.Segment.Stop <= r.End {
				return
			}
		}
		s.buf.WriteString(html.EscapeString(string(v.Segment.Value(s.note.Body))))
		if v.HardLineBreak() {
			s.buf.WriteString("<br>\n")
		} else if v.SoftLineBreak() {
			if s.r.Config.PreserveSoftbreak {
				s.buf.WriteString("\n")
			} else {
				s.buf.WriteString(" ")
			}
		}

	case *ast.String:
		s.buf.WriteString(html.EscapeString(string(v.Value)))

	case *ast.CodeSpan:
		s.buf.WriteString("<code>")
		s.inlineChildren(v)
		s.buf.WriteString("</code>")

	case *ast.Emphasis:
		tag := "em"
		if v.Level >= 2 {
			tag = "strong"
		}
		fmt.Fprintf(&s.buf, "<%s>", tag)
		s.inlineChildren(v)
		fmt.Fprintf(&s.buf, "</%s>", tag)

	case *extast.Strikethrough:
		s.buf.WriteString("<del>")
		s.inlineChildren(v)
		s.buf.WriteString("</del>")

	case *extast.TaskCheckBox:
		if v.IsChecked {
			s.buf.WriteString(`<input type="checkbox" checked disabled>`)
		} else {
			s.buf.WriteString(`<input type="checkbox" disabled>`)
		}

	case *ast.AutoLink:
		url := string(v.URL(s.note.Body))
		fmt.Fprintf(&s.buf, `<a href="%s" rel="noopener">%s</a>`, html.EscapeString(url), html.EscapeString(url))

	case *ast.RawHTML:
		for i := 0; i < v.Segments.Len(); i++ {
			s.buf.Write(v.Segments.At(i).Value(s.note.Body))
		}

	case *obsidianhashtag.Node:
		fmt.Fprintf(&s.buf, `<span class="tag">#%s</span>`, html.EscapeString(string(v.Tag)))

	case *mathext.MathInline:
		s.renderMath(v.Segment.Value(s.note.Body), false)

	case *mathext.MathBlock:
		s.renderMath(v.Segment.Value(s.note.Body), true)

	case *supsub.Superscript:
		s.buf.WriteString("<sup>")
		s.inlineChildren(v)
		s.buf.WriteString("</sup>")

	case *supsub.Subscript:
		s.buf.WriteString("<sub>")
		s.inlineChildren(v)
		s.buf.WriteString("</sub>")

	case *extast.FootnoteLink:
		fmt.Fprintf(&s.buf, `<sup><a id="fnref:%d" href="#fn:%d">%d</a></sup>`, v.Index, v.Index, v.Index)

	case *extast.FootnoteBackLink:
		fmt.Fprintf(&s.buf, ` <a href="#fnref:%d">&#8617;</a>`, v.Index)

	case *wikilink.Node:
		link, ok := s.nextLink()
		if !ok {
			return
		}
		s.renderResolvedLink(link, v.Embed)

	case *ast.Link:
		dest := string(v.Destination)
		if scan.IsAbsoluteURL(dest) {
			s.buf.WriteString(`<a href="`)
			s.buf.WriteString(html.EscapeString(dest))
			s.buf.WriteString(`" rel="noopener">`)
			s.inlineChildren(v)
			s.buf.WriteString("</a>")
			return
		}
		link, ok := s.nextLink()
		if !ok {
			return
		}
		s.renderResolvedLink(link, false)

	case *ast.Image:
		dest := string(v.Destination)
		if scan.IsAbsoluteURL(dest) {
			fmt.Fprintf(&s.buf, `<img src="%s" alt="%s">`, html.EscapeString(dest), html.EscapeString(textOf(v, s.note.Body)))
			return
		}
		link, ok := s.nextLink()
		if !ok {
			return
		}
		s.renderResolvedLink(link, true)

	default:
		s.inlineChildren(n)
	}
}

func textOf(n ast.Node, body []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(body))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func (s *state) renderMath(latexBytes []byte, display bool) {
	latex := string(latexBytes)
	out, err := s.r.Math.Render(latex, display)
	if err != nil {
		s.r.Diagnostics.Addf(diag.SeverityMath, s.note.Path, "math render failed: %v", err)
		fmt.Fprintf(&s.buf, `<span class="math-error">%s</span>`, html.EscapeString(latex))
		return
	}
	class := "math-inline"
	if display {
		class = "math-display"
	}
	fmt.Fprintf(&s.buf, `<span class="%s">%s</span>`, class, out)
}

// renderResolvedLink emits HTML for a resolved or unresolved Link, handling
// the embed-vs-regular-link and image/file/transclusion distinctions.
func (s *state) renderResolvedLink(link model.Link, embed bool) {
	display := link.Reference.Display
	if link.Unresolved {
		fmt.Fprintf(&s.buf, `<span class="internal-link unresolved">%s</span>`, html.EscapeString(display))
		return
	}

	target := link.Target
	if embed && target.Kind == model.KindAsset && resolve.IsImageAsset(target.Path) {
		s.renderImageEmbed(link)
		return
	}
	if embed && target.Kind == model.KindAsset {
		fmt.Fprintf(&s.buf, `<a class="file-embed" href="/%s">%s</a>`, target.Path, html.EscapeString(displayOrStem(display, target.Path)))
		return
	}
	if embed {
		href, _ := s.hrefFor(target)
		fmt.Fprintf(&s.buf, `<span class="transclusion-placeholder" data-target="%s">%s</span>`, href, html.EscapeString(display))
		return
	}

	href, _ := s.hrefFor(target)
	fmt.Fprintf(&s.buf, `<a class="internal-link" href="%s">%s</a>`, href, html.EscapeString(display))
}

func (s *state) renderImageEmbed(link model.Link) {
	target := link.Target
	w, h, pct, ok := resolve.ParseSizeHint(link.Reference.Dest)
	var attrs string
	if ok {
		switch {
		case pct:
			attrs = fmt.Sprintf(` style="width:%s%%"`, w)
		case h != "":
			attrs = fmt.Sprintf(` width="%s" height="%s"`, w, h)
		default:
			attrs = fmt.Sprintf(` width="%s"`, w)
		}
	}
	fmt.Fprintf(&s.buf, `<img src="/%s" alt="%s"%s>`, target.Path, html.EscapeString(link.Reference.Display), attrs)
}

func displayOrStem(display, path string) string {
	if display != "" {
		return display
	}
	name := path
	if idx := strings.LastIndexByte(name, '/'); idx != -1 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx != -1 {
		name = name[:idx]
	}
	return name
}

// hrefFor builds a root-relative href for a resolved, non-asset target.
func (s *state) hrefFor(target *model.Referenceable) (string, string) {
	notePath := target.Path
	slug := s.r.Catalog.Slugs[notePath]
	anchor := target.AnchorID()
	if anchor == "" {
		return "/" + string(slug), ""
	}
	return "/" + string(slug) + "#" + anchor, anchor
}
