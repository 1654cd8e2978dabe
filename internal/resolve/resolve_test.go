package resolve

import (
	"testing"

	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/model"
)

func testCatalog() *index.Catalog {
	cat := &index.Catalog{
		Notes:       []string{"Note 1.md", "Note 2.md"},
		Assets:      []string{"attachments/Diagram.png"},
		Headings:    map[string][]*model.Referenceable{},
		Blocks:      map[string][]*model.Referenceable{},
		Frontmatter: map[string]*model.Frontmatter{},
	}
	cat.Headings["Note 2.md"] = []*model.Referenceable{
		{Kind: model.KindHeading, Path: "Note 2.md", Level: 1, Text: "Note 2", Range: model.ByteRange{Start: 0, End: 10}},
		{Kind: model.KindHeading, Path: "Note 2.md", Level: 2, Text: "Some level 2 title", Range: model.ByteRange{Start: 20, End: 40}},
		{Kind: model.KindHeading, Path: "Note 2.md", Level: 3, Text: "L4", Range: model.ByteRange{Start: 50, End: 60}},
	}
	cat.Blocks["Note 2.md"] = []*model.Referenceable{
		{Kind: model.KindBlock, Path: "Note 2.md", Identifier: "abc123", BlockKind: model.BlockParagraph, Range: model.ByteRange{Start: 70, End: 90}},
	}
	return cat
}

func TestResolve_AssetPrecedenceOverNote(t *testing.T) {
	cat := testCatalog()
	// A note whose stem matches the asset's file name competes for the
	// same destination.
	cat.Notes = append(cat.Notes, "Diagram.png.md")
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "Diagram.png", Kind: model.RefEmbed}})
	if len(links) != 1 || links[0].Unresolved {
		t.Fatalf("expected a resolved link, got %+v", links)
	}
	if links[0].Target.Kind != model.KindAsset {
		t.Errorf("Target.Kind = %v, want KindAsset", links[0].Target.Kind)
	}
}

func TestResolve_ExplicitMdTargetsNoteNotAsset(t *testing.T) {
	cat := &index.Catalog{
		Notes:  []string{"Diagram.md"},
		Assets: []string{"Diagram.png"},
	}
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "other.md", Dest: "Diagram.md", Kind: model.RefWikilink}})
	if links[0].Unresolved || links[0].Target.Kind != model.KindNote {
		t.Errorf("Target = %+v, want resolved KindNote", links[0].Target)
	}
}

func TestResolve_HeadingPath(t *testing.T) {
	cat := testCatalog()
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "Note 2#Some level 2 title#L4", Kind: model.RefWikilink}})
	if links[0].Unresolved {
		t.Fatalf("expected resolved link, got unresolved: %+v", links[0])
	}
	if links[0].Target.Text != "L4" {
		t.Errorf("Target.Text = %q, want %q", links[0].Target.Text, "L4")
	}
}

func TestResolve_BlockID(t *testing.T) {
	cat := testCatalog()
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "Note 2#^abc123", Kind: model.RefWikilink}})
	if links[0].Unresolved || links[0].Target.Identifier != "abc123" {
		t.Errorf("Target = %+v, want block abc123", links[0].Target)
	}
}

func TestResolve_UnknownFileIsUnresolved(t *testing.T) {
	cat := testCatalog()
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "Nonexistent", Kind: model.RefWikilink}})
	if !links[0].Unresolved {
		t.Error("expected Unresolved = true for a missing file")
	}
}

func TestResolve_MissingHeadingFallsBackToNote(t *testing.T) {
	cat := testCatalog()
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "Note 2#Nonexistent Heading", Kind: model.RefWikilink}})
	if links[0].Unresolved {
		t.Fatal("expected fallback to the note, not Unresolved")
	}
	if links[0].Target.Kind != model.KindNote {
		t.Errorf("Target.Kind = %v, want KindNote fallback", links[0].Target.Kind)
	}
}

func TestResolve_EmptyDestTargetsSourceNote(t *testing.T) {
	cat := testCatalog()
	r := New(cat)
	links := r.Resolve([]model.Reference{{SourcePath: "Note 1.md", Dest: "#Some Heading", Kind: model.RefWikilink}})
	_ = links // file_part empty -> resolves within Note 1.md, which has no headings, so falls back to note
	if links[0].Target == nil || links[0].Target.Path != "Note 1.md" {
		t.Errorf("expected target within source note, got %+v", links[0].Target)
	}
}

func TestIsImageAsset(t *testing.T) {
	cases := map[string]bool{
		"a/b.png": true, "a/b.PNG": true, "a/b.svg": true, "a/b.pdf": false, "noext": false,
	}
	for path, want := range cases {
		if got := IsImageAsset(path); got != want {
			t.Errorf("IsImageAsset(%q) = %v, want %v", path, got, want)
		}
	}
}
