package merge_test

import (
	"testing"
	"time"

	"taskboard/internal/merge"
	"taskboard/internal/taskcsv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func record(title string, updatedAt time.Time) taskcsv.Record {
	return taskcsv.Record{
		ID:        uuid.New(),
		Title:     title,
		Status:    "todo",
		UpdatedAt: updatedAt,
	}
}

func TestReconcile_PartitionsIncoming(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	shared := record("shared", now)
	stale := record("stale", now)

	existing := []taskcsv.Record{shared, stale}

	newer := shared
	newer.Title = "shared, renamed"
	newer.UpdatedAt = now.Add(time.Minute)

	older := stale
	older.UpdatedAt = now.Add(-time.Minute)

	incoming := []taskcsv.Record{newer, older, record("brand new", now)}

	res, merged := merge.Reconcile(existing, incoming)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Unchanged)
	assert.Equal(t, len(incoming), res.Total())

	assert.Len(t, merged, 3)
	assert.Equal(t, "shared, renamed", merged[0].Title)
	assert.Equal(t, "stale", merged[1].Title)
	assert.Equal(t, "brand new", merged[2].Title)
}

func TestReconcile_TieKeepsExisting(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	local := record("local wording", now)
	remote := local
	remote.Title = "remote wording"

	res, merged := merge.Reconcile([]taskcsv.Record{local}, []taskcsv.Record{remote})

	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Unchanged)
	assert.Equal(t, "local wording", merged[0].Title)
}

func TestReconcile_Idempotent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	existing := []taskcsv.Record{record("a", now), record("b", now.Add(time.Hour))}
	incoming := []taskcsv.Record{record("c", now)}

	_, merged := merge.Reconcile(existing, incoming)

	// Re-merging the merged set against itself must be a no-op
	res, again := merge.Reconcile(merged, merged)

	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, len(merged), res.Unchanged)
	assert.Equal(t, merged, again)
}

func TestReconcile_EmptyExisting(t *testing.T) {
	now := time.Now().UTC()
	incoming := []taskcsv.Record{record("a", now), record("b", now)}

	res, merged := merge.Reconcile(nil, incoming)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, incoming, merged)
}

func TestDiff(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	kept := record("kept", now)
	bumped := record("bumped", now)

	newer := bumped
	newer.UpdatedAt = now.Add(time.Second)

	fresh := record("fresh", now)

	added, updated := merge.Diff([]taskcsv.Record{kept, bumped}, []taskcsv.Record{kept, newer, fresh})

	assert.Len(t, added, 1)
	assert.Equal(t, "fresh", added[0].Title)
	assert.Len(t, updated, 1)
	assert.Equal(t, newer.UpdatedAt, updated[0].UpdatedAt)
}
