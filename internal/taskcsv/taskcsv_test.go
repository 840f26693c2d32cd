package taskcsv_test

import (
	"bytes"
	"testing"
	"time"

	"taskboard/internal/taskcsv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sampleRecords() []taskcsv.Record {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	sprintID := uuid.New()

	return []taskcsv.Record{
		{
			ID:          uuid.New(),
			Title:       "Fix login redirect",
			Project:     "webapp",
			Category:    "bug",
			Status:      "in-progress",
			Date:        &date,
			EndDate:     &end,
			SprintID:    &sprintID,
			AssigneeIDs: []uuid.UUID{uuid.New(), uuid.New()},
			Checklist: []taskcsv.ChecklistEntry{
				{Text: "reproduce", Completed: true},
				{Text: "write regression test", Completed: false},
			},
			Notes:     "happens only on Safari",
			UpdatedAt: time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:         uuid.New(),
			Title:      "Quarterly report, final pass",
			Status:     "done",
			IsArchived: true,
			UpdatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := sampleRecords()

	data, err := taskcsv.Encode(records)
	assert.NoError(t, err)

	decoded, err := taskcsv.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestDecode_RejectsBadHeader(t *testing.T) {
	data := []byte("id,name\n")

	_, err := taskcsv.Decode(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestDecode_ReportsRowNumber(t *testing.T) {
	records := sampleRecords()[:1]
	data, err := taskcsv.Encode(records)
	assert.NoError(t, err)

	// Corrupt the task id on the first data row
	bad := bytes.Replace(data, []byte(records[0].ID.String()), []byte("not-a-uuid"), 1)

	_, err = taskcsv.Decode(bytes.NewReader(bad))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestDecode_RejectsInvalidStatus(t *testing.T) {
	records := sampleRecords()[:1]
	records[0].Status = "blocked"

	data, err := taskcsv.Encode(records)
	assert.NoError(t, err)

	_, err = taskcsv.Decode(bytes.NewReader(data))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestChecklistPipeEscaping(t *testing.T) {
	rec := sampleRecords()[1]
	rec.Checklist = []taskcsv.ChecklistEntry{{Text: "either|or", Completed: false}}

	data, err := taskcsv.Encode([]taskcsv.Record{rec})
	assert.NoError(t, err)

	decoded, err := taskcsv.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, decoded[0].Checklist, 1)
	assert.Equal(t, "either¦or", decoded[0].Checklist[0].Text)
}
