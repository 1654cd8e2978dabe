// Package scan implements the per-note parse and extraction phase: turning
// one vault note's raw bytes into a frontmatter tree, a parsed goldmark
// AST, the headings and identified blocks it exposes for linking, and the
// outgoing references it contains.
//
// A goldmark.New + ast.Walk dispatch over the parsed document builds the
// heading/block-identifier/reference model the rest of the pipeline reads.
package scan

import (
	"regexp"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/markdown"
	"github.com/adamancini/obsidian-ssg/internal/model"
)

// Note is a single vault note after S1+S2.
type Note struct {
	Path        string
	Frontmatter *model.Frontmatter
	Body        []byte // source after frontmatter is stripped
	AST         ast.Node

	// Referenceables holds this note's headings and identified blocks, in
	// document order.
	Referenceables []*model.Referenceable

	// References holds every outgoing wikilink/embed/markdown-link in
	// document order.
	References []model.Reference

	// Suppressed marks AST paragraph/text-block nodes that are pure
	// `^id` identifier markers and must not be rendered as their own
	// block.
	Suppressed map[ast.Node]bool

	// SuppressedRanges marks raw byte spans (inline trailing identifier
	// lines inside list items) to omit from rendered text.
	SuppressedRanges []model.ByteRange
}

var identifierLineRe = regexp.MustCompile(`^\^([A-Za-z0-9_-]+)\s*$`)

// Parse runs S1 (frontmatter split + AST parse) and S2 (extraction) over one
// note's raw file content.
func Parse(md goldmark.Markdown, path string, content []byte, diagnostics *diag.List) *Note {
	fm, body, err := markdown.ExtractFrontmatter(content)
	if err != nil {
		diagnostics.Addf(diag.SeverityFrontmatter, path, "%v", err)
		fm, body = nil, content
	}

	reader := text.NewReader(body)
	doc := md.Parser().Parse(reader)

	note := &Note{
		Path:        path,
		Frontmatter: fm,
		Body:        body,
		AST:         doc,
		Suppressed:  make(map[ast.Node]bool),
	}

	note.Referenceables = extractReferenceables(doc, path, body, note.Suppressed, &note.SuppressedRanges)
	note.References = extractReferences(path, body)

	return note
}

// extractReferenceables walks the document collecting headings (wherever
// they occur) and identified blocks (top-level content blocks carrying a
// following `^id` marker, or list items carrying a trailing inline `^id`
// line), merged into a single document-order slice.
func extractReferenceables(doc ast.Node, path string, body []byte, suppressed map[ast.Node]bool, suppressedRanges *[]model.ByteRange) []*model.Referenceable {
	var out []*model.Referenceable

	// Headings: collected recursively since they may nest inside
	// blockquotes or list items, not only at document top level.
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			out = append(out, &model.Referenceable{
				Kind:  model.KindHeading,
				Path:  path,
				Level: h.Level,
				Text:  textContent(h, body),
				Range: RangeOfBlock(h),
			})
		}
		return ast.WalkContinue, nil
	})

	// Top-level content blocks eligible for a following `^id` marker.
	var blocks []*model.Referenceable
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		kind, ok := blockKindFor(child)
		if !ok {
			continue
		}
		if isIdentifierMarkerNode(child, body) {
			suppressed[child] = true
			if len(blocks) > 0 {
				// Later marker overrides any identifier already assigned
				// to the same preceding block (no intervening content).
				blocks[len(blocks)-1].Identifier = identifierOf(child, body)
			}
			continue
		}
		blocks = append(blocks, &model.Referenceable{
			Kind:      model.KindBlock,
			Path:      path,
			BlockKind: kind,
			Range:     RangeOfBlock(child),
		})
	}
	for _, b := range blocks {
		if b.Identifier != "" {
			out = append(out, b)
		}
	}

	// List items with a trailing inline `^id` line.
	out = append(out, collectListItemIdentifiers(doc, path, body, suppressedRanges)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}

func blockKindFor(node ast.Node) (model.BlockKind, bool) {
	switch node.(type) {
	case *ast.Paragraph:
		return model.BlockParagraph, true
	case *ast.TextBlock:
		return model.BlockInlineParagraph, true
	case *ast.List:
		return model.BlockList, true
	case *ast.Blockquote:
		return model.BlockQuote, true
	case *extast.Table:
		return model.BlockTable, true
	default:
		return 0, false
	}
}

// isIdentifierMarkerNode reports whether node is a single-line
// paragraph/text-block whose entire (trimmed) content is `^id`.
func isIdentifierMarkerNode(node ast.Node, body []byte) bool {
	lines := blockLines(node)
	if lines == nil || lines.Len() != 1 {
		return false
	}
	seg := lines.At(0)
	return identifierLineRe.Match(trimLine(seg.Value(body)))
}

func identifierOf(node ast.Node, body []byte) string {
	lines := blockLines(node)
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	m := identifierLineRe.FindSubmatch(trimLine(lines.At(0).Value(body)))
	if m == nil {
		return ""
	}
	return string(m[1])
}

func blockLines(node ast.Node) *text.Segments {
	switch n := node.(type) {
	case *ast.Paragraph:
		return n.Lines()
	case *ast.TextBlock:
		return n.Lines()
	default:
		return nil
	}
}

func trimLine(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// RangeOfBlock returns the byte span covering node and all its descendants,
// using the Lines() of every leaf block found within it (container nodes
// such as List/ListItem/Blockquote expose no Lines of their own).
func RangeOfBlock(node ast.Node) model.ByteRange {
	start, end := -1, -1
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if lines := blockLinesAny(n); lines != nil && lines.Len() > 0 {
			s := lines.At(0).Start
			e := lines.At(lines.Len() - 1).Stop
			if start == -1 || s < start {
				start = s
			}
			if e > end {
				end = e
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(node)
	if start == -1 {
		return model.ByteRange{}
	}
	return model.ByteRange{Start: start, End: end}
}

func blockLinesAny(n ast.Node) *text.Segments {
	switch v := n.(type) {
	case *ast.Paragraph:
		return v.Lines()
	case *ast.TextBlock:
		return v.Lines()
	case *ast.Heading:
		return v.Lines()
	case *ast.CodeBlock:
		return v.Lines()
	case *ast.FencedCodeBlock:
		return v.Lines()
	case *ast.HTMLBlock:
		return v.Lines()
	default:
		return nil
	}
}

// collectListItemIdentifiers finds list items whose last content line is a
// bare `^id` marker and attaches the identifier to that item.
func collectListItemIdentifiers(node ast.Node, path string, body []byte, suppressedRanges *[]model.ByteRange) []*model.Referenceable {
	var out []*model.Referenceable
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if li, ok := c.(*ast.ListItem); ok {
				if id, lineRange, ok := trailingIdentifier(li, body); ok {
					out = append(out, &model.Referenceable{
						Kind:       model.KindBlock,
						Path:       path,
						BlockKind:  model.BlockListItem,
						Identifier: id,
						Range:      RangeOfBlock(li),
					})
					*suppressedRanges = append(*suppressedRanges, lineRange)
				}
			}
			walk(c)
		}
	}
	walk(node)
	return out
}

// trailingIdentifier finds the last Lines() segment within li's subtree and
// checks whether it is a bare `^id` marker, provided the item has other
// content before it.
func trailingIdentifier(li *ast.ListItem, body []byte) (string, model.ByteRange, bool) {
	var segs []text.Segment
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if lines := blockLinesAny(n); lines != nil {
			for i := 0; i < lines.Len(); i++ {
				segs = append(segs, lines.At(i))
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(li)
	if len(segs) < 2 {
		return "", model.ByteRange{}, false
	}
	last := segs[len(segs)-1]
	m := identifierLineRe.FindSubmatch(trimLine(last.Value(body)))
	if m == nil {
		return "", model.ByteRange{}, false
	}
	return string(m[1]), model.ByteRange{Start: last.Start, End: last.Stop}, true
}

// textContent concatenates the literal text of node's inline descendants.
func textContent(node ast.Node, body []byte) string {
	var buf []byte
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			buf = append(buf, v.Segment.Value(body)...)
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf = append(buf, ' ')
			}
		case *ast.String:
			buf = append(buf, v.Value...)
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				walk(c)
			}
		}
	}
	walk(node)
	return string(buf)
}
