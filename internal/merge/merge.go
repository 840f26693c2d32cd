// Package merge reconciles two task snapshots. The rule is record-level
// last-writer-wins on the updated_at clock.
package merge

import (
	"taskboard/internal/taskcsv"
)

// Result partitions the incoming records: every considered record lands in
// exactly one bucket, so Added+Updated+Unchanged equals len(incoming).
type Result struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// Total is the number of records the merge considered.
func (r Result) Total() int {
	return r.Added + r.Updated + r.Unchanged
}

// Reconcile merges incoming into existing:
//   - an incoming id not present in existing is added as-is;
//   - an incoming record with a strictly newer updated_at replaces the
//     existing one whole, checklist included;
//   - anything else leaves the existing record in place and counts as
//     unchanged. Ties go to the existing side so a merge never rewrites
//     data it already holds.
//
// The merged set preserves the existing order, with additions appended in
// incoming order.
func Reconcile(existing, incoming []taskcsv.Record) (Result, []taskcsv.Record) {
	var res Result

	merged := make([]taskcsv.Record, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, rec := range existing {
		index[rec.ID.String()] = i
	}

	for _, rec := range incoming {
		pos, known := index[rec.ID.String()]
		if !known {
			index[rec.ID.String()] = len(merged)
			merged = append(merged, rec)
			res.Added++
			continue
		}
		if rec.UpdatedAt.After(merged[pos].UpdatedAt) {
			merged[pos] = rec
			res.Updated++
			continue
		}
		res.Unchanged++
	}

	return res, merged
}

// Diff splits a reconciled set against the original existing snapshot into
// the records to insert and the records to overwrite, for callers that
// persist the outcome instead of replacing the whole set.
func Diff(existing, incoming []taskcsv.Record) (added, updated []taskcsv.Record) {
	index := make(map[string]taskcsv.Record, len(existing))
	for _, rec := range existing {
		index[rec.ID.String()] = rec
	}

	for _, rec := range incoming {
		old, known := index[rec.ID.String()]
		if !known {
			added = append(added, rec)
			continue
		}
		if rec.UpdatedAt.After(old.UpdatedAt) {
			updated = append(updated, rec)
		}
	}
	return added, updated
}
