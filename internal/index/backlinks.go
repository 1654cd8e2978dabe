package index

import (
	"sort"

	"github.com/adamancini/obsidian-ssg/internal/model"
)

// Backlink is one deduplicated incoming-link entry: source note path and
// how many references from it resolved into the target note.
type Backlink struct {
	SourceNote string
	Count      int
}

// BuildBacklinks derives the backlinks index from every resolved Link: a
// map from target note path to the deduplicated, sorted list of notes
// linking into it. For note targets this includes links whose final
// resolution is any heading/block within that note.
func BuildBacklinks(links []model.Link) map[string][]Backlink {
	counts := make(map[string]map[string]int)
	for _, l := range links {
		if l.Unresolved || l.Target == nil || l.Target.Kind == model.KindAsset {
			continue
		}
		target := l.Target.Path
		source := l.Reference.SourcePath
		if target == source {
			continue
		}
		if counts[target] == nil {
			counts[target] = make(map[string]int)
		}
		counts[target][source]++
	}

	out := make(map[string][]Backlink, len(counts))
	for target, bySource := range counts {
		entries := make([]Backlink, 0, len(bySource))
		for src, n := range bySource {
			entries = append(entries, Backlink{SourceNote: src, Count: n})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].SourceNote < entries[j].SourceNote })
		out[target] = entries
	}
	return out
}
