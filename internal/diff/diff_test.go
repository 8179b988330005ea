package diff

import (
	"strings"
	"testing"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"timekeeper/internal/types"
)

var july1 = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

func TestChanges_None(t *testing.T) {
	rec := types.NewRecord(july1, types.StatusPresent, "built report")
	if got := Changes(rec, rec); len(got) != 0 {
		t.Fatalf("expected no changes, got %+v", got)
	}
	if s := Summary(rec, rec); s != "" {
		t.Errorf("expected empty summary, got %q", s)
	}
}

func TestChanges_StatusAndRemarks(t *testing.T) {
	old := types.NewRecord(july1, types.StatusPresent, "built report")
	next := types.NewRecord(july1, types.StatusAbsent, "fixed bug")

	got := Changes(old, next)
	if len(got) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got))
	}
	if got[0].Field != "Status" || got[0].Old != "Present" || got[0].New != "Absent" {
		t.Errorf("unexpected status change: %+v", got[0])
	}
	if got[1].Field != "Remarks" {
		t.Errorf("expected remarks change second, got %+v", got[1])
	}
}

func TestSummary(t *testing.T) {
	old := types.NewRecord(july1, types.StatusNone, "built report")
	next := types.NewRecord(july1, types.StatusPresent, "built report; fixed bug")

	s := NewEngine().Summary(old, next)
	if !strings.HasPrefix(s, "Status: - -> Present; Remarks: ") {
		t.Errorf("unexpected summary prefix: %q", s)
	}
	if !strings.Contains(s, "[+; fixed bug]") {
		t.Errorf("expected inserted remarks in summary, got %q", s)
	}
}

func TestRemarks_WordLevel(t *testing.T) {
	diffs := NewEngine().Remarks("built report", "built dashboard")

	var deleted, inserted bool
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffDelete {
			deleted = true
		}
		if d.Type == diffmatchpatch.DiffInsert {
			inserted = true
		}
	}
	if !deleted || !inserted {
		t.Errorf("expected both a deletion and an insertion, got %+v", diffs)
	}
	if diffs[0].Type != diffmatchpatch.DiffEqual || !strings.HasPrefix(diffs[0].Text, "built") {
		t.Errorf("expected shared prefix first, got %+v", diffs[0])
	}
}
