// Package diag collects the non-fatal diagnostics the generator accumulates
// while scanning, resolving, and rendering a vault, and emits them to
// stderr in the stable `<severity>\t<note path>\t<message>` format once the
// run completes.
//
// Progress is printed directly with fmt.Fprintf(os.Stderr, ...) rather than
// through a logging library; entries are gathered centrally so concurrent
// worker-pool goroutines can append safely and the CLI can derive its exit
// code from the result.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Severity classifies a diagnostic by the phase and fatality of its cause.
type Severity string

const (
	SeverityFatal     Severity = "fatal"
	SeverityPerNote   Severity = "note"
	SeverityPerRef    Severity = "ref"
	SeverityMath      Severity = "math"
	SeverityFrontmatter Severity = "frontmatter"
)

// Entry is one diagnostic event.
type Entry struct {
	Severity Severity
	NotePath string
	Message  string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s\t%s\t%s", e.Severity, e.NotePath, e.Message)
}

// List is a concurrency-safe accumulator of Entry values.
type List struct {
	// Verbose, when set, streams each Entry to stderr as it's added
	// instead of only at Flush, so a long-running generate shows
	// diagnostics as they happen rather than in one batch at the end.
	Verbose bool

	mu      sync.Mutex
	entries []Entry
}

// Add appends a diagnostic. Safe to call from worker-pool goroutines.
func (l *List) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if l.Verbose {
		fmt.Fprintln(os.Stderr, e.String())
	}
}

// Addf is a convenience wrapper around Add for formatted messages.
func (l *List) Addf(sev Severity, notePath, format string, args ...any) {
	l.Add(Entry{Severity: sev, NotePath: notePath, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a snapshot of the accumulated diagnostics.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasNoteFailures reports whether any per-note diagnostic was recorded,
// which maps to a distinct "partial success" exit code.
func (l *List) HasNoteFailures() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Severity == SeverityPerNote {
			return true
		}
	}
	return false
}

// Flush writes every accumulated entry to w, one per line. In Verbose mode
// entries were already streamed as they were added, so Flush is a no-op to
// avoid printing each one twice.
func (l *List) Flush(w io.Writer) {
	if l.Verbose {
		return
	}
	for _, e := range l.Entries() {
		fmt.Fprintln(w, e.String())
	}
}
