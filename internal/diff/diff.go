// Package diff describes what changed between two versions of an
// attendance record, using sergi/go-diff for the remarks text.
package diff

import (
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"timekeeper/internal/types"
)

// Change is one field that differs between two versions of a record.
type Change struct {
	Field string
	Old   string
	New   string
}

// Engine computes word-level remark diffs.
type Engine struct {
	mu  sync.Mutex
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates a new diff engine.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // remarks are short; favour accuracy
	return &Engine{dmp: dmp}
}

// DefaultEngine is a singleton engine for general use
var DefaultEngine = NewEngine()

// Changes lists the fields that differ between old and next, in column order.
// Date and Day are identity and never reported.
func Changes(old, next types.Record) []Change {
	var out []Change
	if old.Status != next.Status {
		out = append(out, Change{Field: "Status", Old: string(old.Status), New: string(next.Status)})
	}
	if old.Remarks != next.Remarks {
		out = append(out, Change{Field: "Remarks", Old: old.Remarks, New: next.Remarks})
	}
	return out
}

// Remarks returns the semantic diff between two remark strings.
func (e *Engine) Remarks(old, next string) []diffmatchpatch.Diff {
	e.mu.Lock()
	defer e.mu.Unlock()
	diffs := e.dmp.DiffMain(old, next, false)
	return e.dmp.DiffCleanupSemantic(diffs)
}

// Summary renders the change between old and next on one line, e.g.
//
//	Status: Present -> Absent; Remarks: [-built report][+fixed bug]
//
// An empty string means nothing changed.
func (e *Engine) Summary(old, next types.Record) string {
	changes := Changes(old, next)
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		switch c.Field {
		case "Remarks":
			parts = append(parts, "Remarks: "+renderInline(e.Remarks(c.Old, c.New)))
		default:
			parts = append(parts, c.Field+": "+orDash(c.Old)+" -> "+orDash(c.New))
		}
	}
	return strings.Join(parts, "; ")
}

// Summary is a convenience function using the default engine.
func Summary(old, next types.Record) string {
	return DefaultEngine.Summary(old, next)
}

func renderInline(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("[+" + d.Text + "]")
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
