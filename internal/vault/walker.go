// Package vault enumerates a vault's markdown notes and non-markdown
// assets: a directory walk with hidden-dir skipping, classifying every
// file as a note or an asset, following symlinks once with a visited-set
// bound (see inodeKey) instead of refusing them outright.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/markdown"
)

// Walker enumerates a vault rooted at Root.
type Walker struct {
	Root          string
	FilterPublish bool
	Diagnostics   *diag.List
}

// New creates a Walker.
func New(root string, filterPublish bool, diagnostics *diag.List) *Walker {
	return &Walker{Root: root, FilterPublish: filterPublish, Diagnostics: diagnostics}
}

// Result is the ordered output of a vault walk.
type Result struct {
	// Notes holds vault-relative paths to markdown files, in stable
	// lexicographic discovery order so slug collision resolution is
	// reproducible.
	Notes []string

	// Assets holds vault-relative paths to every non-markdown file.
	Assets []string
}

// Walk enumerates the vault. An empty vault is valid and yields empty
// slices — the generator still produces a home page for it.
func (w *Walker) Walk() (Result, error) {
	var result Result
	visited := make(map[string]bool) // inodeKey of each symlink target, bounds symlink cycles

	var walk func(dir, relDir string) error
	walk = func(dir, relDir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.Diagnostics.Addf(diag.SeverityFatal, relDir, "read directory: %v", err)
			return nil
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			absPath := filepath.Join(dir, name)
			relPath := name
			if relDir != "" {
				relPath = relDir + "/" + name
			}

			info, err := entry.Info()
			if err != nil {
				w.Diagnostics.Addf(diag.SeverityPerNote, relPath, "stat: %v", err)
				continue
			}

			if info.Mode()&os.ModeSymlink != 0 {
				target, err := filepath.EvalSymlinks(absPath)
				if err != nil {
					w.Diagnostics.Addf(diag.SeverityPerNote, relPath, "unresolvable symlink: %v", err)
					continue
				}
				targetInfo, err := os.Stat(target)
				if err != nil {
					w.Diagnostics.Addf(diag.SeverityPerNote, relPath, "unresolvable symlink: %v", err)
					continue
				}
				key := inodeKey(targetInfo)
				if key != "" {
					if visited[key] {
						continue // cycle
					}
					visited[key] = true
				}
				if targetInfo.IsDir() {
					if err := walk(target, relPath); err != nil {
						return err
					}
					continue
				}
				info = targetInfo
				absPath = target
			}

			if entry.IsDir() {
				if err := walk(absPath, relPath); err != nil {
					return err
				}
				continue
			}

			if isMarkdown(name) {
				if w.FilterPublish && !w.isPublished(absPath, relPath) {
					continue
				}
				result.Notes = append(result.Notes, relPath)
			} else {
				result.Assets = append(result.Assets, relPath)
			}
		}
		return nil
	}

	info, err := os.Stat(w.Root)
	if err != nil {
		return result, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("vault root is not a directory: %s", w.Root)
	}

	if err := walk(w.Root, ""); err != nil {
		return result, err
	}
	return result, nil
}

func isMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// isPublished parses a candidate note's frontmatter and checks the
// `publish` key. Parse failures are treated as non-published (reported,
// not fatal).
func (w *Walker) isPublished(absPath, relPath string) bool {
	content, err := os.ReadFile(absPath)
	if err != nil {
		w.Diagnostics.Addf(diag.SeverityPerNote, relPath, "read: %v", err)
		return false
	}
	fm, _, err := markdown.ExtractFrontmatter(content)
	if err != nil {
		w.Diagnostics.Addf(diag.SeverityFrontmatter, relPath, "%v", err)
		return false
	}
	return markdown.FrontmatterBool(fm, "publish")
}

// inodeKey returns the key used to bound symlink cycles: the target's
// name, size, and modification time. It does not read the device or
// inode number, so two distinct targets that agree on all three share a
// key. It never returns "".
func inodeKey(info fs.FileInfo) string {
	return fmt.Sprintf("%s:%d:%v", info.Name(), info.Size(), info.ModTime().UnixNano())
}
