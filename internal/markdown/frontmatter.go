package markdown

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/adamancini/obsidian-ssg/internal/model"
)

const frontmatterDelimiter = "---"

// FrontmatterError reports a malformed frontmatter block: line info when
// available, always wrapping the underlying yaml error.
type FrontmatterError struct {
	Line    int
	Message string
	Cause   error
}

func (e *FrontmatterError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("frontmatter error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("frontmatter error: %s", e.Message)
}

func (e *FrontmatterError) Unwrap() error { return e.Cause }

// ExtractFrontmatter splits a note's raw content into its frontmatter tree
// and markdown body. Absent frontmatter yields a nil *model.Frontmatter and
// the content unchanged.
//
// The delimiter-scanning algorithm supports both \n and \r\n line endings,
// an empty frontmatter block, and a frontmatter block terminating at
// end-of-file.
func ExtractFrontmatter(content []byte) (*model.Frontmatter, []byte, error) {
	if len(content) == 0 {
		return nil, content, nil
	}

	if !bytes.HasPrefix(content, []byte(frontmatterDelimiter+"\n")) &&
		!bytes.HasPrefix(content, []byte(frontmatterDelimiter+"\r\n")) {
		return nil, content, nil
	}

	lineEnding := "\n"
	skipLen := 4
	if bytes.HasPrefix(content, []byte(frontmatterDelimiter+"\r\n")) {
		lineEnding = "\r\n"
		skipLen = 5
	}

	rest := content[skipLen:]
	closingDelim := lineEnding + frontmatterDelimiter + lineEnding
	idx := bytes.Index(rest, []byte(closingDelim))

	if idx == -1 && bytes.HasPrefix(rest, []byte(frontmatterDelimiter+lineEnding)) {
		// Empty frontmatter block: "---\n---\n".
		body := rest[len(frontmatterDelimiter+lineEnding):]
		return nil, body, nil
	}

	if idx == -1 {
		endDelim := lineEnding + frontmatterDelimiter
		if bytes.HasSuffix(rest, []byte(endDelim)) {
			idx = len(rest) - len(endDelim)
		} else {
			return nil, nil, &FrontmatterError{Line: 1, Message: "unclosed frontmatter block: missing closing '---'"}
		}
	}

	yamlContent := rest[:idx]
	bodyStart := idx + len(closingDelim)
	var body []byte
	if bodyStart <= len(rest) {
		body = rest[bodyStart:]
	} else {
		body = []byte{}
	}

	if len(bytes.TrimSpace(yamlContent)) == 0 {
		return nil, body, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(yamlContent, &node); err != nil {
		return nil, nil, &FrontmatterError{Message: fmt.Sprintf("invalid YAML: %v", err), Cause: err}
	}
	if len(node.Content) == 0 {
		return nil, body, nil
	}

	fm, err := nodeToFrontmatter(node.Content[0])
	if err != nil {
		return nil, nil, &FrontmatterError{Message: fmt.Sprintf("invalid YAML: %v", err), Cause: err}
	}

	return fm, body, nil
}

// nodeToFrontmatter converts a YAML mapping node into an ordered
// model.Frontmatter tree.
func nodeToFrontmatter(n *yaml.Node) (*model.Frontmatter, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter root must be a mapping, got kind %d", n.Kind)
	}
	fm := &model.Frontmatter{Values: make(map[string]model.FMValue)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := fmValueFromNode(n.Content[i+1])
		fm.Keys = append(fm.Keys, key)
		fm.Values[key] = val
	}
	return fm, nil
}

func fmValueFromNode(n *yaml.Node) model.FMValue {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return model.FMValue{Kind: model.FMNull}
		}
		return model.FMValue{Kind: model.FMString, String: n.Value}
	case yaml.SequenceNode:
		list := make([]model.FMValue, 0, len(n.Content))
		for _, c := range n.Content {
			list = append(list, fmValueFromNode(c))
		}
		return model.FMValue{Kind: model.FMList, List: list}
	case yaml.MappingNode:
		nested, err := nodeToFrontmatter(n)
		if err != nil {
			return model.FMValue{Kind: model.FMNull}
		}
		return model.FMValue{Kind: model.FMMap, Map: nested}
	default:
		return model.FMValue{Kind: model.FMNull}
	}
}

// FrontmatterBool reads a boolean-ish scalar ("true"/"false") from a
// frontmatter value, defaulting to false for anything else (missing key,
// non-scalar, or unrecognized text): missing or non-true rejects.
func FrontmatterBool(fm *model.Frontmatter, key string) bool {
	v, ok := fm.Get(key)
	if !ok || v.Kind != model.FMString {
		return false
	}
	return v.String == "true"
}

// FrontmatterString reads a plain string scalar, returning "" if absent or
// not a scalar.
func FrontmatterString(fm *model.Frontmatter, key string) string {
	v, ok := fm.Get(key)
	if !ok || v.Kind != model.FMString {
		return ""
	}
	return v.String
}
