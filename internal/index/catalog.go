// Package index assembles the per-note scan results into the frozen,
// vault-wide tables resolution and rendering read from thereafter —
// path-to-slug, path-to-title, path-to-frontmatter, and the per-note
// heading/block referenceable lists.
//
// Built as a plain in-memory value frozen after construction: there is no
// global mutable state, and the tables are built once then frozen for the
// rest of the run.
package index

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/scan"
)

// Catalog is the frozen, vault-wide index built after every note has been
// scanned.
type Catalog struct {
	// Notes and Assets are vault-relative paths in S0 discovery order.
	Notes  []string
	Assets []string

	// Headings and Blocks hold each note's referenceables, in document
	// order, keyed by note path.
	Headings map[string][]*model.Referenceable
	Blocks   map[string][]*model.Referenceable

	Frontmatter map[string]*model.Frontmatter
	Slugs       map[string]model.Slug
	Titles      map[string]string

	// Bodies retains each note's post-frontmatter source for the
	// duration of rendering.
	Bodies map[string][]byte
}

// Build assembles a Catalog from every scanned note plus the asset list
// from the vault walk.
func Build(notes []*scan.Note, assets []string) *Catalog {
	cat := &Catalog{
		Assets:      assets,
		Headings:    make(map[string][]*model.Referenceable),
		Blocks:      make(map[string][]*model.Referenceable),
		Frontmatter: make(map[string]*model.Frontmatter),
		Slugs:       make(map[string]model.Slug),
		Titles:      make(map[string]string),
		Bodies:      make(map[string][]byte),
	}

	for _, n := range notes {
		cat.Notes = append(cat.Notes, n.Path)
		cat.Frontmatter[n.Path] = n.Frontmatter
		cat.Bodies[n.Path] = n.Body

		var headings, blocks []*model.Referenceable
		for _, r := range n.Referenceables {
			switch r.Kind {
			case model.KindHeading:
				headings = append(headings, r)
			case model.KindBlock:
				blocks = append(blocks, r)
			}
		}
		cat.Headings[n.Path] = headings
		cat.Blocks[n.Path] = blocks
	}

	cat.buildSlugs()
	for _, n := range notes {
		cat.Titles[n.Path] = title(n, cat.Headings[n.Path])
	}

	return cat
}

// buildSlugs derives a slug for every note path, resolving collisions by
// appending -1, -2, … in discovery order.
func (c *Catalog) buildSlugs() {
	seen := make(map[string]int)
	for _, path := range c.Notes {
		base := slugify(path)
		slug := base
		if n, ok := seen[base]; ok {
			n++
			seen[base] = n
			slug = suffixSlug(base, n)
		} else {
			seen[base] = 0
		}
		c.Slugs[path] = model.Slug(slug)
	}
}

var reservedCharsRe = regexp.MustCompile(`[^a-z0-9/]+`)

// slugify lowercases a vault-relative path, maps whitespace/reserved
// characters to hyphens per-segment (preserving directory structure), and
// appends .html.
func slugify(path string) string {
	lower := strings.ToLower(path)
	lower = strings.TrimSuffix(lower, ".md")
	lower = strings.TrimSuffix(lower, ".markdown")
	segments := strings.Split(lower, "/")
	for i, seg := range segments {
		seg = reservedCharsRe.ReplaceAllString(seg, "-")
		seg = strings.Trim(seg, "-")
		segments[i] = seg
	}
	return strings.Join(segments, "/") + ".html"
}

func suffixSlug(base string, n int) string {
	trimmed := strings.TrimSuffix(base, ".html")
	return trimmed + "-" + itoa(n) + ".html"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// title resolves a note's display title: frontmatter.title, else the text
// of the first H1, else the filename stem.
func title(n *scan.Note, headings []*model.Referenceable) string {
	if n.Frontmatter != nil {
		if v, ok := n.Frontmatter.Get("title"); ok && v.Kind == model.FMString && v.String != "" {
			return v.String
		}
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return stem(n.Path)
}

func stem(path string) string {
	base := path
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx != -1 {
		base = base[:idx]
	}
	return base
}

// SortedHeadings returns headings already stored in document order; kept as
// a method for callers that want a defensive copy.
func (c *Catalog) SortedHeadings(path string) []*model.Referenceable {
	hs := c.Headings[path]
	out := make([]*model.Referenceable, len(hs))
	copy(out, hs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}
