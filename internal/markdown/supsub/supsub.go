// Package supsub adds superscript (`^text^`) and subscript (`~text~`) inline
// spans to goldmark. It follows the shape of goldmark's other inline
// extensions — a parser.InlineParser + node pair registered through Extend —
// mirroring internal/markdown/mathext's single-delimiter scanning approach.
package supsub

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind identifiers for the two span types.
var (
	KindSuperscript = ast.NewNodeKind("Superscript")
	KindSubscript   = ast.NewNodeKind("Subscript")
)

// Superscript is a `^text^` inline span.
type Superscript struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *Superscript) Kind() ast.NodeKind { return KindSuperscript }

// Dump implements ast.Node.
func (n *Superscript) Dump(source []byte, level int) {
	ast.DumpHelper(n, "Superscript", source, nil, nil)
}

// Subscript is a `~text~` inline span.
type Subscript struct {
	ast.BaseInline
}

// Kind implements ast.Node.
func (n *Subscript) Kind() ast.NodeKind { return KindSubscript }

// Dump implements ast.Node.
func (n *Subscript) Dump(source []byte, level int) {
	ast.DumpHelper(n, "Subscript", source, nil, nil)
}

type inlineParser struct {
	delim byte
	kind  func() ast.Node
}

// Trigger returns the byte that starts a scan.
func (p *inlineParser) Trigger() []byte {
	return []byte{p.delim}
}

// Parse scans a single-character-delimited span starting at the reader's
// current position. A delimiter immediately followed by its own kind (e.g.
// `~~` for strikethrough) is left alone so extension.Strikethrough gets
// first refusal on double-tilde spans.
func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) == 0 || line[0] != p.delim {
		return nil
	}
	if len(line) > 1 && line[1] == p.delim {
		return nil
	}

	source := block.Source()
	start := segment.Start + 1
	end := -1
	for i := start; i < segment.Stop; i++ {
		if source[i] == '\\' {
			i++
			continue
		}
		if source[i] == p.delim {
			end = i
			break
		}
		if source[i] == '\n' || source[i] == ' ' {
			break
		}
	}
	if end == -1 || end == start {
		return nil
	}

	node := p.kind()
	block.Advance(end + 1 - segment.Start)

	seg := text.NewSegment(start, end)
	node.AppendChild(node, ast.NewTextSegment(seg))
	return node
}

// Extender registers the superscript (`^`) and subscript (`~`) inline
// parsers. HTML emission happens in internal/render, which type-switches on
// *Superscript/*Subscript directly alongside the rest of the inline set.
type Extender struct{}

// Extend implements goldmark.Extender.
func (e *Extender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(&inlineParser{delim: '^', kind: func() ast.Node { return &Superscript{} }}, 501),
			util.Prioritized(&inlineParser{delim: '~', kind: func() ast.Node { return &Subscript{} }}, 501),
		),
	)
}
