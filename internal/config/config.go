// Package config assembles the value object threaded through every
// generation phase. There is deliberately no persistent config file layer:
// this tool has no cross-invocation settings to remember, so the Config is
// built once from CLI flags and passed by value through every phase.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// RenderMode selects between a build-time (server-side) renderer and a
// client-side passthrough for math/diagram extensions.
type RenderMode string

const (
	RenderBuildTime   RenderMode = "build-time"
	RenderClientSide  RenderMode = "client-side"
	RenderRawLatex    RenderMode = "raw-latex"
)

// Config holds every knob the `generate` subcommand accepts.
type Config struct {
	VaultRoot string
	OutputDir string

	Theme              string
	FilterPublish      bool
	PreserveSoftbreak  bool
	MermaidRenderMode  RenderMode
	TikzRenderMode     RenderMode
	QuiverRenderMode   RenderMode
	CustomCalloutCSS   string

	Workers int
}

// Default returns a Config with every flag's default value applied.
func Default() *Config {
	return &Config{
		Theme:             "default",
		FilterPublish:     false,
		PreserveSoftbreak: false,
		MermaidRenderMode: RenderClientSide,
		TikzRenderMode:    RenderClientSide,
		QuiverRenderMode:  RenderRawLatex,
		Workers:           runtime.NumCPU(),
	}
}

// Validate checks the fatal preconditions: vault root missing or not a
// directory, and (best effort) output directory unwritable.
func (c *Config) Validate() error {
	if c.VaultRoot == "" {
		return fmt.Errorf("vault root is required")
	}
	info, err := os.Stat(c.VaultRoot)
	if err != nil {
		return fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", c.VaultRoot)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	switch c.MermaidRenderMode {
	case RenderBuildTime, RenderClientSide:
	default:
		return fmt.Errorf("invalid --mermaid-render-mode: %s", c.MermaidRenderMode)
	}
	switch c.TikzRenderMode {
	case RenderBuildTime, RenderClientSide:
	default:
		return fmt.Errorf("invalid --tikz-render-mode: %s", c.TikzRenderMode)
	}
	switch c.QuiverRenderMode {
	case RenderBuildTime, RenderRawLatex:
	default:
		return fmt.Errorf("invalid --quiver-render-mode: %s", c.QuiverRenderMode)
	}

	if c.CustomCalloutCSS != "" {
		if _, err := os.Stat(c.CustomCalloutCSS); err != nil {
			return fmt.Errorf("custom callout css: %w", err)
		}
	}

	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}

	return nil
}

// ThemeCSSPath returns the output-relative path of the selected theme's
// stylesheet: styles/themes/<theme>.css.
func (c *Config) ThemeCSSPath() string {
	return filepath.Join("styles", "themes", c.Theme+".css")
}
