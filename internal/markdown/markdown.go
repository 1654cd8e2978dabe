// Package markdown wraps goldmark with the Obsidian-flavored extension set
// this generator needs: the same goldmark.New(goldmark.WithExtensions(...))
// construction, with the obsidian/wikilink pairing widened to the full GFM +
// footnote + definition-list + typographer + mermaid + math + sup/sub set.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	obsidian "github.com/powerman/goldmark-obsidian"
	"go.abhg.dev/goldmark/hashtag"
	"go.abhg.dev/goldmark/mermaid"
	"go.abhg.dev/goldmark/wikilink"

	"github.com/adamancini/obsidian-ssg/internal/markdown/mathext"
	"github.com/adamancini/obsidian-ssg/internal/markdown/supsub"
)

// Options configures the goldmark instance the generator builds once and
// reuses for every note across a parallel worker pool — goldmark's
// Markdown value is safe for concurrent Parse calls since it holds no
// per-parse state.
type Options struct {
	// MermaidServerSide selects mermaid.RenderModeServer (build-time)
	// instead of mermaid.RenderModeClient.
	MermaidServerSide bool
}

// New builds the shared goldmark.Markdown instance.
func New(opts Options) goldmark.Markdown {
	mermaidMode := mermaid.RenderModeClient
	if opts.MermaidServerSide {
		mermaidMode = mermaid.RenderModeServer
	}

	return goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAttribute(), // heading attributes
		),
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolink, task lists
			extension.Footnote,
			extension.DefinitionList,
			extension.Typographer,
			&wikilink.Extender{},
			&hashtag.Extender{},
			&mermaid.Extender{RenderMode: mermaidMode},
			obsidian.NewObsidian(),
			&mathext.Extender{},
			&supsub.Extender{},
		),
	)
}
