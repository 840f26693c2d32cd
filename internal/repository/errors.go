package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrChecklistItemNotFound is returned when a checklist item is not found
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrSprintNotFound is returned when a sprint is not found
	ErrSprintNotFound = errors.New("sprint not found")

	// ErrActiveSprintExists is returned when activation would produce a
	// second active sprint
	ErrActiveSprintExists = errors.New("another sprint is already active")

	// ErrSprintCompleted is returned when a completed sprint is mutated
	ErrSprintCompleted = errors.New("sprint is already completed")

	// ErrAssigneeNotFound is returned when an assignee is not found
	ErrAssigneeNotFound = errors.New("assignee not found")

	// ErrRoomNotFound is returned when a sync room is not found
	ErrRoomNotFound = errors.New("sync room not found")
)
