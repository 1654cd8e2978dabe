package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adamancini/obsidian-ssg/internal/config"
	"github.com/adamancini/obsidian-ssg/internal/diag"
	"github.com/adamancini/obsidian-ssg/internal/index"
	"github.com/adamancini/obsidian-ssg/internal/markdown"
	"github.com/adamancini/obsidian-ssg/internal/mathrender"
	"github.com/adamancini/obsidian-ssg/internal/model"
	"github.com/adamancini/obsidian-ssg/internal/render"
	"github.com/adamancini/obsidian-ssg/internal/resolve"
	"github.com/adamancini/obsidian-ssg/internal/scan"
	"github.com/adamancini/obsidian-ssg/internal/site"
	"github.com/adamancini/obsidian-ssg/internal/vault"
	"github.com/adamancini/obsidian-ssg/internal/workerpool"
)

// ExitError carries the process exit code of a hard failure (1 invalid
// arguments, 2 vault I/O), distinct from cobra's default blanket exit-1 on
// any RunE error. Per-note failures (3) are reported through ExitCode.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode is the process exit code to use when Execute returns a nil
// error. main sets os.Exit(cli.ExitCode) in that case; a per-note failure
// (exit 3) is reported this way rather than as a RunE error, since the
// site was still (partially) written and is not itself a command failure.
var ExitCode int

var gen struct {
	outputDir         string
	theme             string
	filterPublish     bool
	preserveSoftbreak bool
	mermaidMode       string
	tikzMode          string
	quiverMode        string
	customCalloutCSS  string
	workers           int
}

var generateCmd = &cobra.Command{
	Use:   "generate <vault>",
	Short: "Render a vault into a static HTML site",
	Long: `generate walks a vault directory, resolves every wikilink, embed,
and heading/block anchor it contains, and writes a static HTML site to
--output.

Examples:
  obsidian-ssg generate ./my-vault --output ./dist
  obsidian-ssg generate ./my-vault --output ./dist --theme dark --filter-publish`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVar(&gen.outputDir, "output", "", "output directory (required)")
	flags.StringVar(&gen.theme, "theme", "default", "site theme name")
	flags.BoolVar(&gen.filterPublish, "filter-publish", false, "only render notes with frontmatter publish: true")
	flags.BoolVar(&gen.preserveSoftbreak, "preserve-softbreak", false, "render markdown soft line breaks as newlines instead of spaces")
	flags.StringVar(&gen.mermaidMode, "mermaid-render-mode", "client-side", "mermaid rendering mode: build-time|client-side")
	flags.StringVar(&gen.tikzMode, "tikz-render-mode", "client-side", "tikz rendering mode: build-time|client-side")
	flags.StringVar(&gen.quiverMode, "quiver-render-mode", "raw-latex", "quiver rendering mode: build-time|raw-latex")
	flags.StringVar(&gen.customCalloutCSS, "custom-callout-css", "", "path to a stylesheet overriding callout appearance")
	flags.IntVar(&gen.workers, "workers", 0, "worker pool size (default: number of CPUs)")
	_ = generateCmd.MarkFlagRequired("output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.VaultRoot = args[0]
	cfg.OutputDir = gen.outputDir
	cfg.Theme = gen.theme
	cfg.FilterPublish = gen.filterPublish
	cfg.PreserveSoftbreak = gen.preserveSoftbreak
	cfg.MermaidRenderMode = config.RenderMode(gen.mermaidMode)
	cfg.TikzRenderMode = config.RenderMode(gen.tikzMode)
	cfg.QuiverRenderMode = config.RenderMode(gen.quiverMode)
	cfg.CustomCalloutCSS = gen.customCalloutCSS
	if gen.workers > 0 {
		cfg.Workers = gen.workers
	}

	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: classifyValidationError(cfg, err), Err: err}
	}

	diagnostics := &diag.List{Verbose: verbose}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	walker := vault.New(cfg.VaultRoot, cfg.FilterPublish, diagnostics)
	walked, err := walker.Walk()
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("walk vault: %w", err)}
	}

	md := markdown.New(markdown.Options{MermaidServerSide: cfg.MermaidRenderMode == config.RenderBuildTime})
	pool := workerpool.New(cfg.Workers)

	scanned := workerpool.Map(ctx, pool, walked.Notes, func(_ context.Context, relPath string) (*scan.Note, error) {
		content, err := os.ReadFile(filepath.Join(cfg.VaultRoot, filepath.FromSlash(relPath)))
		if err != nil {
			diagnostics.Addf(diag.SeverityPerNote, relPath, "read: %v", err)
			return nil, err
		}
		return scan.Parse(md, relPath, content, diagnostics), nil
	})

	var notes []*scan.Note
	for _, r := range scanned {
		if r.Err == nil && r.Value != nil {
			notes = append(notes, r.Value)
		}
	}

	cat := index.Build(notes, walked.Assets)
	resolver := resolve.New(cat)

	type rendered struct {
		path  string
		res   render.Result
		links []model.Link
	}

	mathR := &mathrender.NoopRenderer{}
	renderer := render.New(cat, cfg, mathR, diagnostics)

	results := workerpool.Map(ctx, pool, notes, func(_ context.Context, n *scan.Note) (rendered, error) {
		links := resolver.Resolve(n.References)
		res := renderer.Render(n, links)
		return rendered{path: n.Path, res: res, links: links}, nil
	})

	var allLinks []model.Link
	for _, r := range results {
		allLinks = append(allLinks, r.Value.links...)
	}
	backlinks := index.BuildBacklinks(allLinks)

	writer := site.New(cfg, cat)
	if err := writer.WriteThemeAssets(); err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("write theme assets: %w", err)}
	}
	for _, assetPath := range walked.Assets {
		if err := writer.CopyAsset(cfg.VaultRoot, assetPath); err != nil {
			diagnostics.Addf(diag.SeverityPerNote, assetPath, "copy asset: %v", err)
		}
	}
	for _, r := range results {
		if r.Err != nil {
			diagnostics.Addf(diag.SeverityPerNote, r.Value.path, "render: %v", r.Err)
			continue
		}
		page := site.Page{
			Path:      r.Value.path,
			Body:      r.Value.res.Body,
			TOC:       r.Value.res.TOC,
			Backlinks: render.RenderBacklinks(r.Value.path, backlinks, cat),
		}
		if err := writer.WritePage(page); err != nil {
			diagnostics.Addf(diag.SeverityPerNote, r.Value.path, "write: %v", err)
		}
	}
	if err := writer.WriteHome(); err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("write home page: %w", err)}
	}

	diagnostics.Flush(os.Stderr)
	if diagnostics.HasNoteFailures() {
		ExitCode = 3
	}
	return nil
}

func classifyValidationError(cfg *config.Config, err error) int {
	if _, statErr := os.Stat(cfg.VaultRoot); statErr != nil {
		return 2
	}
	return 1
}
