package repository_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sprintRows(id uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "status", "archived_count", "created_at", "updated_at"}).
		AddRow(id.String(), "Sprint 12", status, 0, time.Now(), time.Now())
}

func TestSprintRepository_Activate_BlockedByActiveSprint(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	sprintRepo := repository.NewSprintRepository(gormDB)

	sprintID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .*`).
		WithArgs(sprintID, 1).
		WillReturnRows(sprintRows(sprintID, model.SprintPlanned))
	// Another sprint is already active
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sprints"`).
		WithArgs(model.SprintActive, sprintID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	// Act
	_, err := sprintRepo.Activate(context.Background(), sprintID)

	// Assert
	assert.ErrorIs(t, err, repository.ErrActiveSprintExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSprintRepository_Activate_Success(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	sprintRepo := repository.NewSprintRepository(gormDB)

	sprintID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .*`).
		WithArgs(sprintID, 1).
		WillReturnRows(sprintRows(sprintID, model.SprintPlanned))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sprints"`).
		WithArgs(model.SprintActive, sprintID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "sprints" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	sprint, err := sprintRepo.Activate(context.Background(), sprintID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, model.SprintActive, sprint.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSprintRepository_Complete_ArchivesAndDetaches(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	sprintRepo := repository.NewSprintRepository(gormDB)

	sprintID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .*`).
		WithArgs(sprintID, 1).
		WillReturnRows(sprintRows(sprintID, model.SprintActive))
	// Two done tasks get archived
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	// Three unfinished tasks get detached
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE "sprints" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	sprint, err := sprintRepo.Complete(context.Background(), sprintID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, model.SprintCompleted, sprint.Status)
	assert.Equal(t, 2, sprint.ArchivedCount)
	assert.NotNil(t, sprint.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSprintRepository_Complete_AlreadyCompleted(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	sprintRepo := repository.NewSprintRepository(gormDB)

	sprintID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .*`).
		WithArgs(sprintID, 1).
		WillReturnRows(sprintRows(sprintID, model.SprintCompleted))
	mock.ExpectRollback()

	// Act
	_, err := sprintRepo.Complete(context.Background(), sprintID)

	// Assert
	assert.ErrorIs(t, err, repository.ErrSprintCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
