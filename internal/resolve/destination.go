// Package resolve matches every outgoing Reference against the frozen
// Catalog using Obsidian's destination-parsing and ancestor-descendant
// heading-matching rules: pipe/hash splitting generalized to the full
// file/heading-path/block-id grammar Obsidian wikilinks use.
package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/model"
)

var hashRunRe = regexp.MustCompile(`#+`)

// ParseDestination splits a Reference's raw destination string into its
// file/heading-path/block-id parts plus the resolved display text
// (explicit alias, or a synthesized breadcrumb when none is given).
//
// literal selects wikilink-style decoding (trim only) over markdown-link
// percent-decoding.
func ParseDestination(raw string, literal bool, existingDisplay string) (model.ParsedDest, string) {
	before, alias, hasAlias := splitUnescapedPipe(raw)

	filePart, tail, hadHash := splitFirst(before, '#')

	var headingPath []string
	var blockID string
	if hadHash {
		for _, seg := range splitTailSegments(tail) {
			seg = decodeSegment(seg, literal)
			if seg == "" {
				continue
			}
			if strings.HasPrefix(seg, "^") {
				if blockID == "" {
					blockID = strings.TrimPrefix(seg, "^")
				}
				continue
			}
			headingPath = append(headingPath, seg)
		}
	}

	filePart = decodeSegment(filePart, literal)
	noteOnly := false
	if strings.HasSuffix(filePart, ".md") {
		filePart = strings.TrimSuffix(filePart, ".md")
		noteOnly = true
	}

	dest := model.ParsedDest{
		FilePart:    filePart,
		HeadingPath: headingPath,
		BlockID:     blockID,
		NoteOnly:    noteOnly,
	}

	display := existingDisplay
	if hasAlias {
		display = strings.TrimSpace(alias)
	} else if display == "" {
		display = synthesizeDisplay(dest)
	}

	return dest, display
}

// splitUnescapedPipe splits raw on the leftmost `|` not preceded by `\`.
func splitUnescapedPipe(raw string) (before, after string, found bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '|' && (i == 0 || raw[i-1] != '\\') {
			return unescapePipe(raw[:i]), raw[i+1:], true
		}
	}
	return unescapePipe(raw), "", false
}

func unescapePipe(s string) string {
	return strings.ReplaceAll(s, `\|`, "|")
}

// splitFirst splits s at the first occurrence of sep, reporting whether sep
// was present at all.
func splitFirst(s string, sep byte) (before, after string, found bool) {
	idx := strings.IndexByte(s, sep)
	if idx == -1 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

// splitTailSegments collapses runs of consecutive `#` (decorative heading
// level hints) to a single separator and splits the result.
func splitTailSegments(tail string) []string {
	collapsed := hashRunRe.ReplaceAllString(tail, "#")
	collapsed = strings.TrimPrefix(collapsed, "#")
	if collapsed == "" {
		return nil
	}
	return strings.Split(collapsed, "#")
}

func decodeSegment(s string, literal bool) string {
	s = strings.TrimSpace(s)
	if literal || s == "" {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(decoded)
}

var sizeHintRe = regexp.MustCompile(`^(\d+)(?:x(\d+)|(%))?$`)

// ParseSizeHint extracts an embed's `|WxH`, `|W`, or `|W%` size hint from
// its raw destination string. It re-splits on the pipe itself rather than
// reusing ParseDestination's alias/display output, since for image embeds
// that slot holds a size hint, not display text.
func ParseSizeHint(raw string) (width, height string, percent bool, ok bool) {
	_, after, found := splitUnescapedPipe(raw)
	if !found {
		return "", "", false, false
	}
	after = strings.TrimSpace(after)
	m := sizeHintRe.FindStringSubmatch(after)
	if m == nil {
		return "", "", false, false
	}
	if m[3] == "%" {
		return m[1], "", true, true
	}
	return m[1], m[2], false, true
}

// synthesizeDisplay builds the default breadcrumb display text used when a
// wikilink has no explicit `|alias`, e.g. "Note 2 > Some level 2 title > L4".
func synthesizeDisplay(dest model.ParsedDest) string {
	var parts []string
	if dest.FilePart != "" {
		parts = append(parts, dest.FilePart)
	}
	parts = append(parts, dest.HeadingPath...)
	if dest.BlockID != "" && len(parts) == 0 {
		parts = append(parts, "^"+dest.BlockID)
	}
	return strings.Join(parts, " > ")
}
