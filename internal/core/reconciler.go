// Package core holds the entry reconciler and the assistant that turns one
// chat message into one response.
package core

import (
	"context"
	"fmt"
	"time"

	"timekeeper/internal/diff"
	"timekeeper/internal/logging"
	"timekeeper/internal/store"
	"timekeeper/internal/types"
)

// OutcomeKind names the branch a reconcile call took.
type OutcomeKind int

const (
	OutcomeCreated OutcomeKind = iota
	OutcomeUpdated
	OutcomeDuplicateRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDuplicateRejected:
		return "duplicate_rejected"
	}
	return "unknown"
}

// Outcome is the result of Reconcile. On error Kind is the branch that was
// attempted and Record is the entry as submitted. Changes summarises what an
// update altered and is empty otherwise.
type Outcome struct {
	Kind    OutcomeKind
	Record  types.Record
	Changes string
}

// Entry is one attendance submission for a date.
type Entry struct {
	Date    time.Time
	Day     string // ignored; the weekday is always derived from Date
	Status  types.Status
	Remarks string
	Message string // original text, re-extracted on overwrite
}

// RemarkExtractor re-derives remarks from the original message.
// *perception.Classifier satisfies it.
type RemarkExtractor interface {
	ExtractRemarks(ctx context.Context, message string) (string, error)
}

// Reconciler decides between insert, overwrite and rejection for an entry.
type Reconciler struct {
	store     store.Store
	extractor RemarkExtractor
}

// NewReconciler creates a reconciler over st. ex may be nil, in which case
// an overwrite keeps the remarks it was given.
func NewReconciler(st store.Store, ex RemarkExtractor) *Reconciler {
	return &Reconciler{store: st, extractor: ex}
}

// Reconcile applies e:
//
//	no record             -> insert              -> OutcomeCreated
//	record and overwrite  -> re-extract, replace -> OutcomeUpdated
//	record, no overwrite  -> nothing             -> OutcomeDuplicateRejected
func (r *Reconciler) Reconcile(ctx context.Context, e Entry, overwrite bool) (Outcome, error) {
	rec := types.NewRecord(e.Date, e.Status, e.Remarks)

	existing, err := r.store.Find(ctx, rec.Date)
	if err != nil {
		return Outcome{Kind: OutcomeCreated, Record: rec}, err
	}

	if existing == nil {
		saved, err := r.store.Upsert(ctx, rec, types.ModeInsert)
		if err != nil {
			return Outcome{Kind: OutcomeCreated, Record: rec}, err
		}
		logging.Reconcile("created %s status=%q", saved.DateString(), saved.Status)
		return Outcome{Kind: OutcomeCreated, Record: saved}, nil
	}

	if !overwrite {
		logging.ReconcileWarn("duplicate for %s rejected", rec.DateString())
		return Outcome{Kind: OutcomeDuplicateRejected, Record: *existing}, nil
	}

	if r.extractor != nil && e.Message != "" {
		clean, err := r.extractor.ExtractRemarks(ctx, e.Message)
		if err != nil {
			return Outcome{Kind: OutcomeUpdated, Record: rec}, fmt.Errorf("re-extract remarks: %w", err)
		}
		rec.Remarks = clean
	}

	saved, err := r.store.Upsert(ctx, rec, types.ModeOverwrite)
	if err != nil {
		return Outcome{Kind: OutcomeUpdated, Record: rec}, err
	}
	changes := diff.Summary(*existing, saved)
	logging.Reconcile("updated %s: %s", saved.DateString(), changes)
	return Outcome{Kind: OutcomeUpdated, Record: saved, Changes: changes}, nil
}
