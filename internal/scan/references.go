package scan

import (
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/model"
)

// extractReferences finds every outgoing wikilink, embed, and markdown-link
// occurrence in a note's body, in source order, with exact byte ranges.
//
// This walks raw bytes rather than goldmark's AST (ast.Link/ast.Image nodes
// carry no reliable byte range of their own in goldmark — only block nodes
// expose Lines()): a single-pass scanner that finds wikilink, embed, and
// markdown-link syntax and skips code spans/fences.
func extractReferences(path string, body []byte) []model.Reference {
	codeRanges := computeCodeRanges(body)

	var refs []model.Reference
	i := 0
	n := len(body)
	for i < n {
		if inRanges(codeRanges, i) {
			i++
			continue
		}

		switch {
		case body[i] == '!' && i+2 < n && body[i+1] == '[' && body[i+2] == '[':
			if ref, next, ok := scanWikiBracket(path, body, i, true); ok {
				refs = append(refs, ref)
				i = next
				continue
			}
		case i+1 < n && body[i] == '[' && body[i+1] == '[':
			if ref, next, ok := scanWikiBracket(path, body, i, false); ok {
				refs = append(refs, ref)
				i = next
				continue
			}
		case body[i] == '!' && i+1 < n && body[i+1] == '[':
			if ref, next, ok := scanMarkdownBracket(path, body, i, true); ok {
				refs = append(refs, ref)
				i = next
				continue
			}
		case body[i] == '[' && (i == 0 || body[i-1] != '!'):
			if ref, next, ok := scanMarkdownBracket(path, body, i, false); ok {
				refs = append(refs, ref)
				i = next
				continue
			}
		}
		i++
	}
	return refs
}

// scanWikiBracket parses a `[[...]]` or `![[...]]` occurrence starting at
// start (the '!' or first '[').
func scanWikiBracket(path string, body []byte, start int, embed bool) (model.Reference, int, bool) {
	openAt := start
	if embed {
		openAt++
	}
	contentStart := openAt + 2
	closeAt := indexFrom(body, contentStart, "]]")
	if closeAt == -1 {
		return model.Reference{}, 0, false
	}
	dest := string(body[contentStart:closeAt])
	kind := model.RefWikilink
	if embed {
		kind = model.RefEmbed
	}
	end := closeAt + 2
	return model.Reference{
		SourcePath: path,
		Range:      model.ByteRange{Start: start, End: end},
		Dest:       dest,
		Kind:       kind,
	}, end, true
}

// scanMarkdownBracket parses a `[text](url)` or `![text](url)` occurrence
// starting at start. Bracket/paren nesting is not fully CommonMark-compliant:
// the first `]` and the first `)` close the link, with no nested bracket
// balancing.
func scanMarkdownBracket(path string, body []byte, start int, embed bool) (model.Reference, int, bool) {
	openAt := start
	if embed {
		openAt++
	}
	textStart := openAt + 1
	closeBracket := indexFrom(body, textStart, "]")
	if closeBracket == -1 {
		return model.Reference{}, 0, false
	}
	if closeBracket+1 >= len(body) || body[closeBracket+1] != '(' {
		return model.Reference{}, 0, false
	}
	urlStart := closeBracket + 2
	closeParen := indexFrom(body, urlStart, ")")
	if closeParen == -1 {
		return model.Reference{}, 0, false
	}

	display := string(body[textStart:closeBracket])
	url := strings.TrimSpace(string(body[urlStart:closeParen]))
	// Strip an optional " title" suffix: `url "title"`.
	if idx := strings.IndexByte(url, ' '); idx != -1 {
		url = url[:idx]
	}
	if isAbsoluteURL(url) {
		return model.Reference{}, 0, false // external URLs are not Referenceable resolution targets
	}

	kind := model.RefMarkdownLink
	if embed {
		kind = model.RefEmbed
	}
	end := closeParen + 1
	return model.Reference{
		SourcePath: path,
		Range:      model.ByteRange{Start: start, End: end},
		Dest:       url,
		Kind:       kind,
		Display:    display,
	}, end, true
}

func isAbsoluteURL(s string) bool {
	return IsAbsoluteURL(s)
}

// IsAbsoluteURL reports whether s has a URL scheme (http://, mailto:, ...)
// rather than being a vault-relative path. Exported so the renderer can
// apply the same rule to AST link/image nodes it didn't see queued as a
// Reference.
func IsAbsoluteURL(s string) bool {
	idx := strings.Index(s, "://")
	if idx <= 0 || idx > 10 {
		return strings.HasPrefix(s, "mailto:") || strings.HasPrefix(s, "data:")
	}
	return true
}

func indexFrom(body []byte, from int, sep string) int {
	if from > len(body) {
		return -1
	}
	rel := strings.Index(string(body[from:]), sep)
	if rel == -1 {
		return -1
	}
	return from + rel
}

func inRanges(ranges []model.ByteRange, pos int) bool {
	for _, r := range ranges {
		if pos >= r.Start && pos < r.End {
			return true
		}
	}
	return false
}

// computeCodeRanges finds fenced code blocks (``` or ~~~), 4-space/tab
// indented code blocks, and inline code spans (`...`), so the reference
// scanner can skip bracket-like text inside them.
func computeCodeRanges(body []byte) []model.ByteRange {
	var ranges []model.ByteRange

	lines := splitLinesWithOffsets(body)
	inFence := false
	fenceStart := 0
	var fenceMarker string

	inIndented := false
	indentStart := 0
	prevBlank := true // document start counts as a paragraph break

	flushIndented := func(end int) {
		if inIndented {
			ranges = append(ranges, model.ByteRange{Start: indentStart, End: end})
			inIndented = false
		}
	}

	for _, ln := range lines {
		raw := body[ln.Start:ln.End]
		trimmed := strings.TrimSpace(string(raw))

		if inFence {
			if strings.HasPrefix(trimmed, fenceMarker) {
				inFence = false
				ranges = append(ranges, model.ByteRange{Start: fenceStart, End: ln.End})
			}
			prevBlank = false
			continue
		}

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			flushIndented(ln.Start)
			inFence = true
			fenceStart = ln.Start
			fenceMarker = trimmed[:3]
			prevBlank = false
			continue
		}

		if trimmed == "" {
			// A blank line doesn't close an indented block on its own —
			// CommonMark allows blank lines inside one.
			prevBlank = true
			continue
		}

		indented := hasIndentedCodePrefix(raw)
		switch {
		case inIndented && indented:
			// continues the current indented block
		case inIndented && !indented:
			flushIndented(ln.Start)
			ranges = append(ranges, inlineCodeSpans(body, ln)...)
		case !inIndented && indented && prevBlank:
			// An indented block cannot interrupt a paragraph, only start
			// after a blank line (or at the document start).
			inIndented = true
			indentStart = ln.Start
		default:
			ranges = append(ranges, inlineCodeSpans(body, ln)...)
		}
		prevBlank = false
	}
	if inFence {
		ranges = append(ranges, model.ByteRange{Start: fenceStart, End: len(body)})
	}
	flushIndented(len(body))
	return ranges
}

// hasIndentedCodePrefix reports whether line starts with a tab or with four
// or more leading spaces, goldmark's own threshold for an indented code
// block line.
func hasIndentedCodePrefix(line []byte) bool {
	if len(line) > 0 && line[0] == '\t' {
		return true
	}
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n >= 4
}

func inlineCodeSpans(body []byte, ln model.ByteRange) []model.ByteRange {
	var spans []model.ByteRange
	i := ln.Start
	for i < ln.End {
		if body[i] == '`' {
			closeAt := indexFromBounded(body, i+1, ln.End, '`')
			if closeAt == -1 {
				break
			}
			spans = append(spans, model.ByteRange{Start: i, End: closeAt + 1})
			i = closeAt + 1
			continue
		}
		i++
	}
	return spans
}

func indexFromBounded(body []byte, from, to int, b byte) int {
	for i := from; i < to; i++ {
		if body[i] == b {
			return i
		}
	}
	return -1
}

func splitLinesWithOffsets(body []byte) []model.ByteRange {
	var lines []model.ByteRange
	start := 0
	for i, b := range body {
		if b == '\n' {
			lines = append(lines, model.ByteRange{Start: start, End: i})
			start = i + 1
		}
	}
	if start < len(body) {
		lines = append(lines, model.ByteRange{Start: start, End: len(body)})
	}
	return lines
}
