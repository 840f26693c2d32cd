// Package taskcsv encodes and decodes the whole-dataset CSV snapshot that
// clients exchange with sync rooms and the export/import endpoints.
package taskcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

const (
	dateLayout = "2006-01-02"
)

// Header is the fixed column set of a snapshot. Decode rejects files whose
// header does not match.
var Header = []string{
	"id", "title", "project", "category", "status", "date", "end_date",
	"sprint_id", "assignee_ids", "checklist", "notes", "is_archived", "updated_at",
}

type ChecklistEntry struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Record is one task row of a snapshot.
type Record struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Project     string           `json:"project"`
	Category    string           `json:"category"`
	Status      string           `json:"status"`
	Date        *time.Time       `json:"date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	SprintID    *uuid.UUID       `json:"sprint_id,omitempty"`
	AssigneeIDs []uuid.UUID      `json:"assignee_ids,omitempty"`
	Checklist   []ChecklistEntry `json:"checklist,omitempty"`
	Notes       string           `json:"notes"`
	IsArchived  bool             `json:"is_archived"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Encode writes records as a CSV snapshot with the canonical header.
func Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := w.Write(encodeRow(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeRow(rec Record) []string {
	row := make([]string, len(Header))
	row[0] = rec.ID.String()
	row[1] = rec.Title
	row[2] = rec.Project
	row[3] = rec.Category
	row[4] = rec.Status
	if rec.Date != nil {
		row[5] = rec.Date.Format(dateLayout)
	}
	if rec.EndDate != nil {
		row[6] = rec.EndDate.Format(dateLayout)
	}
	if rec.SprintID != nil {
		row[7] = rec.SprintID.String()
	}
	ids := make([]string, len(rec.AssigneeIDs))
	for i, id := range rec.AssigneeIDs {
		ids[i] = id.String()
	}
	row[8] = strings.Join(ids, "|")
	row[9] = encodeChecklist(rec.Checklist)
	row[10] = rec.Notes
	row[11] = fmt.Sprintf("%t", rec.IsArchived)
	row[12] = rec.UpdatedAt.UTC().Format(time.RFC3339)
	return row
}

// Checklist items are joined with "|"; the pipe is reserved, so item text
// containing one is rewritten with a broken bar before encoding.
func encodeChecklist(items []ChecklistEntry) string {
	parts := make([]string, len(items))
	for i, item := range items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}
		parts[i] = mark + " " + strings.ReplaceAll(item.Text, "|", "¦")
	}
	return strings.Join(parts, "|")
}

func decodeChecklist(s string) []ChecklistEntry {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	items := make([]ChecklistEntry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item := ChecklistEntry{Text: part}
		switch {
		case strings.HasPrefix(part, "[x] "):
			item.Completed = true
			item.Text = part[4:]
		case strings.HasPrefix(part, "[ ] "):
			item.Text = part[4:]
		}
		items = append(items, item)
	}
	return items
}

// Decode reads a CSV snapshot. Rows that fail to parse abort the decode with
// the 1-based row number in the error.
func Decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty document")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header column %q, want %q", header[i], col)
		}
	}

	var records []Record
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row []string) (Record, error) {
	var rec Record
	var err error

	if rec.ID, err = uuid.Parse(row[0]); err != nil {
		return rec, fmt.Errorf("invalid task id %q", row[0])
	}
	rec.Title = row[1]
	rec.Project = row[2]
	rec.Category = row[3]
	rec.Status = row[4]
	if !model.ValidStatus(rec.Status) {
		return rec, fmt.Errorf("invalid status %q", rec.Status)
	}
	if rec.Date, err = parseDate(row[5]); err != nil {
		return rec, err
	}
	if rec.EndDate, err = parseDate(row[6]); err != nil {
		return rec, err
	}
	if row[7] != "" {
		sprintID, err := uuid.Parse(row[7])
		if err != nil {
			return rec, fmt.Errorf("invalid sprint id %q", row[7])
		}
		rec.SprintID = &sprintID
	}
	if row[8] != "" {
		for _, raw := range strings.Split(row[8], "|") {
			id, err := uuid.Parse(raw)
			if err != nil {
				return rec, fmt.Errorf("invalid assignee id %q", raw)
			}
			rec.AssigneeIDs = append(rec.AssigneeIDs, id)
		}
	}
	rec.Checklist = decodeChecklist(row[9])
	rec.Notes = row[10]
	rec.IsArchived = row[11] == "true"
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, row[12]); err != nil {
		return rec, fmt.Errorf("invalid updated_at %q", row[12])
	}
	return rec, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}

// FromTask converts a stored task into a snapshot record.
func FromTask(t model.Task) Record {
	rec := Record{
		ID:         t.ID,
		Title:      t.Title,
		Project:    t.Project,
		Category:   t.Category,
		Status:     t.Status,
		Date:       t.Date,
		EndDate:    t.EndDate,
		SprintID:   t.SprintID,
		Notes:      t.Notes,
		IsArchived: t.IsArchived,
		UpdatedAt:  t.UpdatedAt,
	}
	for _, a := range t.Assignees {
		rec.AssigneeIDs = append(rec.AssigneeIDs, a.ID)
	}
	for _, item := range t.Checklist {
		rec.Checklist = append(rec.Checklist, ChecklistEntry{Text: item.Text, Completed: item.Completed})
	}
	return rec
}

// ToTask converts a snapshot record into a task owned by createdBy. Checklist
// items are rebuilt in record order; assignee links are carried as IDs only
// and resolved by the caller.
func ToTask(rec Record, createdBy uuid.UUID) model.Task {
	t := model.Task{
		ID:         rec.ID,
		Title:      rec.Title,
		Project:    rec.Project,
		Category:   rec.Category,
		Status:     rec.Status,
		Date:       rec.Date,
		EndDate:    rec.EndDate,
		SprintID:   rec.SprintID,
		Notes:      rec.Notes,
		IsArchived: rec.IsArchived,
		CreatedBy:  createdBy,
		UpdatedAt:  rec.UpdatedAt,
	}
	for i, item := range rec.Checklist {
		t.Checklist = append(t.Checklist, model.ChecklistItem{
			TaskID:    rec.ID,
			Text:      item.Text,
			Completed: item.Completed,
			Position:  i,
		})
	}
	return t
}
