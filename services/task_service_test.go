package services

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"tasknest/tasknest/testutils"
)

func TestCreateTask_Success(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`INSERT INTO "events"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	taskService := &TaskService{}
	task, err := taskService.CreateTask(db, map[string]interface{}{
		"title":       "Buy groceries",
		"description": "milk and eggs",
	}, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), task.ID)
	assert.Equal(t, "Buy groceries", task.Title)
	assert.Equal(t, uint(1), task.UserID)
	assert.False(t, task.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_CompletedFlag(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks" (.+) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectExec(`INSERT INTO "events"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	taskService := &TaskService{}
	task, err := taskService.CreateTask(db, map[string]interface{}{
		"title":       "Done already",
		"description": "",
		"completed":   true,
	}, 1)
	assert.NoError(t, err)
	assert.True(t, task.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_MissingTitle(t *testing.T) {
	db, _, close := testutils.SetupMockDB()
	defer close()

	taskService := &TaskService{}
	_, err := taskService.CreateTask(db, map[string]interface{}{
		"description": "milk and eggs",
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetTaskById_NotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id = \$1 (.+)`).
		WithArgs(99, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	taskService := &TaskService{}
	_, err := taskService.GetTaskById(db, 99)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTasks_TitleSearch(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE LOWER\(title\) LIKE \$1`).
		WithArgs("%groc%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "user_id"}).
			AddRow(7, "Buy groceries", "milk and eggs", 1))

	taskService := &TaskService{}
	tasks, err := taskService.GetTasks(db, map[string]interface{}{"q": "GROC"})
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, "Buy groceries", tasks[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTasks_EmptyResultIsNotNil(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	taskService := &TaskService{}
	tasks, err := taskService.GetTasks(db, map[string]interface{}{})
	assert.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_AllowListedFields(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id = \$1 (.+)`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "user_id"}).
			AddRow(7, "Old title", "old desc", 1))
	mock.ExpectExec(`UPDATE "tasks" SET (.+) WHERE id = \$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "events"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	taskService := &TaskService{}
	task, err := taskService.UpdateTask(db, 7, map[string]interface{}{
		"title":       "New title",
		"description": "new desc",
	})
	assert.NoError(t, err)
	assert.Equal(t, "New title", task.Title)
	assert.Equal(t, "new desc", task.Description)
	assert.Equal(t, uint(1), task.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_OwnerIsImmutable(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id = \$1 (.+)`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "user_id"}).
			AddRow(7, "Old title", "old desc", 1))
	// user_id and completed are not allow-listed, so no UPDATE happens
	mock.ExpectExec(`INSERT INTO "events"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	taskService := &TaskService{}
	task, err := taskService.UpdateTask(db, 7, map[string]interface{}{
		"user_id":   float64(2),
		"completed": true,
		"notAField": "x",
	})
	assert.NoError(t, err)
	assert.Equal(t, uint(1), task.UserID)
	assert.Equal(t, "Old title", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_Success(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id = \$1 (.+)`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id"}).
			AddRow(7, "Buy groceries", 1))
	mock.ExpectExec(`DELETE FROM "tasks" WHERE "tasks"."id" = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "events"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	taskService := &TaskService{}
	err := taskService.DeleteTask(db, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_NotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id = \$1 (.+)`).
		WithArgs(99, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	taskService := &TaskService{}
	err := taskService.DeleteTask(db, 99)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
