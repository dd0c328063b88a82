// Package report collects the outcome of running every file in a
// corpus through decode -> emit -> assemble -> diff, the way
// pkg/result collected one optimization Rule per target sequence: a
// mutex-guarded Table accumulates results from concurrent workers, and
// a gob checkpoint lets a long run resume.
package report

import (
	"sort"
	"sync"
)

// Severity orders results so the worst outcomes sort first.
type Severity int

const (
	// SeverityClean means decode, emit, and the round-trip assembly all
	// agreed byte-for-byte with the input.
	SeverityClean Severity = iota
	// SeverityUnimplemented means decode and emit succeeded but at least
	// one decoded instruction has no simulator coverage.
	SeverityUnimplemented
	// SeverityMismatch means the round-trip assembly succeeded but
	// produced different bytes than the input.
	SeverityMismatch
	// SeverityFailed means decode, emit, or invoking the assembler
	// itself returned an error.
	SeverityFailed
)

// Result is the outcome of running one corpus file through the
// decode/emit/assemble/diff pipeline.
type Result struct {
	Path         string
	Severity     Severity
	Detail       string // human-readable reason, empty for SeverityClean
	Bytes        int    // size of the original input
	Instructions int    // count of decoded instructions
}

// Table stores corpus run results.
type Table struct {
	mu      sync.Mutex
	results []Result
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a result into the table.
func (t *Table) Add(r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, r)
}

// Results returns a copy of all results, worst severity first.
func (t *Table) Results() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Result, len(t.results))
	copy(out, t.results)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Len returns the number of results recorded so far.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

// Summary tallies results by severity.
func (t *Table) Summary() (clean, unimplemented, mismatch, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.results {
		switch r.Severity {
		case SeverityClean:
			clean++
		case SeverityUnimplemented:
			unimplemented++
		case SeverityMismatch:
			mismatch++
		case SeverityFailed:
			failed++
		}
	}
	return
}
