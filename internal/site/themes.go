package site

// baseCSS is the structural stylesheet shared by every theme: layout,
// sidebar, frontmatter panel, callouts, and code blocks. Theme stylesheets
// only override palette and typography.
const baseCSS = `
body { margin: 0; display: flex; font-family: system-ui, sans-serif; }
.sidebar { width: 240px; flex-shrink: 0; overflow-y: auto; padding: 1rem; }
.sidebar ul { list-style: none; margin: 0; padding: 0; }
.sidebar li.active a { font-weight: 600; }
main { flex: 1; min-width: 0; padding: 2rem; max-width: 56rem; }
.frontmatter { margin-bottom: 1rem; }
.fm-row { display: flex; gap: 0.5rem; font-size: 0.85rem; }
.fm-key { font-weight: 600; }
.fm-tags { list-style: none; display: flex; gap: 0.4rem; padding: 0; }
.fm-tags li { background: var(--tag-bg, #eee); border-radius: 0.25rem; padding: 0.1rem 0.5rem; }
.badge-draft { background: #e0a000; color: #fff; border-radius: 0.25rem; padding: 0.1rem 0.5rem; font-size: 0.75rem; }
.toc { border-left: 2px solid #ddd; padding-left: 1rem; margin-top: 2rem; }
.backlinks { margin-top: 2rem; border-top: 1px solid #ddd; padding-top: 1rem; }
.internal-link.unresolved { color: #b00; text-decoration: underline wavy; }
.transclusion-placeholder { display: block; border: 1px dashed #aaa; padding: 0.5rem; }
div.callout { border-left: 4px solid #888; padding: 0.5rem 1rem; border-radius: 0.2rem; }
div.callout .callout-title { font-weight: 600; }
.tag { background: var(--tag-bg, #eee); border-radius: 0.25rem; padding: 0 0.3rem; }
.math-error { color: #b00; font-family: monospace; }
pre.mermaid-fallback, pre.tikz-fallback, pre.quiver-fallback { background: #f6f6f6; padding: 0.75rem; overflow-x: auto; }
`

// bundledThemes maps theme name to its palette/typography overrides. A
// vault author selecting an unrecognized --theme falls back to "default"
// rather than failing — config.Config.Validate does not check the theme
// name.
var bundledThemes = map[string]string{
	"default": `
:root { --bg: #ffffff; --fg: #1a1a1a; --accent: #3456c2; --tag-bg: #eef1fb; }
body { background: var(--bg); color: var(--fg); }
a { color: var(--accent); }
.sidebar { background: #fafafa; border-right: 1px solid #e5e5e5; }
`,
	"dark": `
:root { --bg: #1a1a1a; --fg: #e6e6e6; --accent: #7aa2f7; --tag-bg: #2a2e3d; }
body { background: var(--bg); color: var(--fg); }
a { color: var(--accent); }
.sidebar { background: #141414; border-right: 1px solid #2a2a2a; }
div.callout { border-left-color: #555; }
`,
}
