package mathext

import (
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func parseMath(source []byte) ast.Node {
	md := goldmark.New(goldmark.WithExtensions(&Extender{}))
	return md.Parser().Parse(text.NewReader(source))
}

func TestInlineParser_SingleDollarSpan(t *testing.T) {
	source := []byte("energy is $E = mc^2$ in this frame.\n")
	doc := parseMath(source)

	var found string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if m, ok := n.(*MathInline); ok {
				found = string(m.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if found != "E = mc^2" {
		t.Errorf("inline math segment = %q, want %q", found, "E = mc^2")
	}
}

func TestInlineParser_DisplayDollarSpan(t *testing.T) {
	source := []byte("a display equation: $$\\sum_{i=0}^n i$$ done.\n")
	doc := parseMath(source)

	var found string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if m, ok := n.(*MathBlock); ok {
				found = string(m.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if found != `\sum_{i=0}^n i` {
		t.Errorf("display math segment = %q, want %q", found, `\sum_{i=0}^n i`)
	}
}

func TestInlineParser_UnterminatedDollarIsLiteral(t *testing.T) {
	source := []byte("just a $5 price tag, not math.\n")
	doc := parseMath(source)

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch n.(type) {
			case *MathInline, *MathBlock:
				found = true
			}
		}
		return ast.WalkContinue, nil
	})
	if found {
		t.Error("an unterminated '$' should not be parsed as math")
	}
}

func TestInlineParser_AdjacentSpansDontCloseEarly(t *testing.T) {
	source := []byte("$a$$b$\n")
	doc := parseMath(source)

	var segments []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if m, ok := n.(*MathBlock); ok {
				segments = append(segments, string(m.Segment.Value(source)))
			}
			if m, ok := n.(*MathInline); ok {
				segments = append(segments, string(m.Segment.Value(source)))
			}
		}
		return ast.WalkContinue, nil
	})
	if len(segments) == 0 {
		t.Fatal("expected at least one math span to be parsed")
	}
}

func TestMathInline_KindIsDistinctFromMathBlock(t *testing.T) {
	if KindMathInline == KindMathBlock {
		t.Error("KindMathInline and KindMathBlock must be distinct node kinds")
	}
}
