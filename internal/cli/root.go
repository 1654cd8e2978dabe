// Package cli implements the Cobra-based command-line interface for
// obsidian-ssg: a single `generate` subcommand that renders a vault into a
// static site.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// verbose is the persistent --verbose flag: when set, generate
	// streams diagnostics to stderr as they're recorded instead of only
	// printing them in one batch once the run completes.
	verbose bool
)

// SetVersion sets the version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "obsidian-ssg",
	Short: "Render an Obsidian vault into a static HTML site",
	Long: `obsidian-ssg turns an Obsidian-flavored markdown vault into a
self-contained static HTML site.

It resolves wikilinks, embeds, and heading/block anchors the way Obsidian
does, and renders callouts, footnotes, tables, task lists, and math/diagram
blocks to plain HTML.

Use 'obsidian-ssg generate' to render a vault.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			fmt.Fprintf(os.Stderr, "obsidian-ssg %s: running %s\n", version, cmd.Name())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "stream diagnostics to stderr as they occur")
	rootCmd.SetVersionTemplate(fmt.Sprintf("obsidian-ssg %s (commit: %s, built: %s)\n", version, commit, date))
	rootCmd.AddCommand(generateCmd)
}
