// Package mathext adds Obsidian-style math nodes to goldmark: inline `$…$`
// and display `$$…$$`. It follows the shape of goldmark's other inline
// extensions — a parser.InlineParser + node pair registered through
// Extend — with its own delimiter-scanning logic underneath.
package mathext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind identifiers for the two math node types.
var (
	KindMathInline = ast.NewNodeKind("MathInline")
	KindMathBlock  = ast.NewNodeKind("MathBlock")
)

// MathInline is a `$…$` inline math span.
type MathInline struct {
	ast.BaseInline
	Segment text.Segment // the LaTeX source, delimiters excluded
}

// Kind implements ast.Node.
func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

// Dump implements ast.Node.
func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, "MathInline", source, nil, nil)
}

// MathBlock is a `$$…$$` display math span (may appear inline within a
// paragraph, per Obsidian convention, rather than only as a standalone
// block).
type MathBlock struct {
	ast.BaseInline
	Segment text.Segment
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, "MathBlock", source, nil, nil)
}

type inlineParser struct{}

// Trigger returns the byte that starts a scan: '$'.
func (p *inlineParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse scans a `$…$` or `$$…$$` span starting at the reader's current
// position (which Trigger has already confirmed is '$').
func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) == 0 || line[0] != '$' {
		return nil
	}

	display := len(line) > 1 && line[1] == '$'
	delimLen := 1
	if display {
		delimLen = 2
	}

	start := segment.Start + delimLen
	closing := []byte("$")
	if display {
		closing = []byte("$$")
	}

	// Search for the closing delimiter within the rest of the current
	// line only; a span never crosses a newline.
	source := block.Source()
	end := -1
	for i := start; i+len(closing) <= segment.Stop; i++ {
		if source[i] == '\\' {
			i++ // skip escaped character
			continue
		}
		if matchAt(source, i, closing) {
			// A single '$' must not be immediately followed by another
			// '$' when we're scanning for the single-dollar closer,
			// otherwise "$a$$b$" would close early.
			if !display && i+1 < len(source) && source[i+1] == '$' {
				continue
			}
			end = i
			break
		}
		if source[i] == '\n' {
			break
		}
	}
	if end == -1 {
		return nil
	}

	content := text.NewSegment(start, end)

	advance := (end + len(closing)) - segment.Start
	block.Advance(advance)

	if display {
		return &MathBlock{Segment: content}
	}
	return &MathInline{Segment: content}
}

func matchAt(source []byte, i int, pattern []byte) bool {
	if i+len(pattern) > len(source) {
		return false
	}
	for j, b := range pattern {
		if source[i+j] != b {
			return false
		}
	}
	return true
}

// Extender registers the math inline parser and a default (no-render)
// node registration; the actual HTML emission happens in
// internal/render, which type-switches on *MathInline/*MathBlock directly
// rather than through goldmark's own HTML renderer, because emitting math
// HTML requires consulting an external mathrender.Renderer, which
// goldmark's renderer.NodeRenderer interface has no way to reach.
type Extender struct{}

// Extend implements goldmark.Extender.
func (e *Extender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(&inlineParser{}, 499),
		),
	)
}
