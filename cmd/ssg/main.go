// Package main provides the entry point for the obsidian-ssg CLI tool.
//
// obsidian-ssg renders an Obsidian-flavored markdown vault into a static
// HTML site, resolving wikilinks, embeds, and heading/block anchors the way
// Obsidian does.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/adamancini/obsidian-ssg/internal/cli"
)

// Version information set by build flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		code := 1
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
	os.Exit(cli.ExitCode)
}
