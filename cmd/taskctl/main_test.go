package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/taskcsv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func writeSnapshot(t *testing.T, dir, name string, records []taskcsv.Record) string {
	t.Helper()
	data, err := taskcsv.Encode(records)
	assert.NoError(t, err)

	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	records := []taskcsv.Record{{
		ID:        uuid.New(),
		Title:     "Write release notes",
		Status:    "todo",
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}}
	path := writeSnapshot(t, dir, "base.csv", records)

	loaded, err := loadSnapshot(path)
	assert.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, err := loadSnapshot(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRunMergeCommand_WritesMergedOutput(t *testing.T) {
	dir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	shared := taskcsv.Record{ID: uuid.New(), Title: "shared", Status: "todo", UpdatedAt: now}
	basePath = writeSnapshot(t, dir, "base.csv", []taskcsv.Record{shared})

	bumped := shared
	bumped.Title = "shared, renamed"
	bumped.UpdatedAt = now.Add(time.Minute)
	extra := taskcsv.Record{ID: uuid.New(), Title: "extra", Status: "done", UpdatedAt: now}
	incomingPath = writeSnapshot(t, dir, "incoming.csv", []taskcsv.Record{bumped, extra})

	outputPath = filepath.Join(dir, "merged.csv")

	runMergeCommand(mergeCmd, nil)

	f, err := os.Open(outputPath)
	assert.NoError(t, err)
	defer f.Close()

	merged, err := taskcsv.Decode(f)
	assert.NoError(t, err)
	assert.Len(t, merged, 2)
	assert.Equal(t, "shared, renamed", merged[0].Title)
	assert.Equal(t, "extra", merged[1].Title)
}
