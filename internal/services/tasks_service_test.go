package services_test

import (
	"testing"
	"time"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_DefaultsLeadMinutes(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "lead@example.com", true)

	task, err := svc.CreateTask(db, owner.ID, services.TaskInput{Content: "  padded  "})
	require.NoError(t, err)

	assert.Equal(t, "padded", task.Content)
	assert.Equal(t, 30, task.ReminderLeadMinutes)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.ReminderActive)
}

func TestCreateTask_RejectsEmptyContent(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "empty@example.com", true)

	_, err := svc.CreateTask(db, owner.ID, services.TaskInput{Content: "   "})
	assert.ErrorIs(t, err, services.ErrContentRequired)
}

func TestCreateTask_UnknownCategory(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "cat@example.com", true)

	missing := uuid.Must(uuid.NewV4())
	_, err := svc.CreateTask(db, owner.ID, services.TaskInput{
		Content:    "categorized",
		CategoryID: &missing,
	})
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
}

func TestGetTaskByID_OwnershipEnforced(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "owner@example.com", true)
	intruder := createUser(t, db, "intruder@example.com", true)

	task := createTask(t, db, owner.ID, "private note")

	got, err := svc.GetTaskByID(db, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// Someone else's task reads as forbidden, not missing.
	_, err = svc.GetTaskByID(db, intruder.ID, task.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = svc.GetTaskByID(db, owner.ID, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
}

func TestUpdateTask_ClearsDueDate(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "clear@example.com", true)

	due := time.Now().Add(time.Hour)
	task, err := svc.CreateTask(db, owner.ID, services.TaskInput{
		Content:        "with deadline",
		DueDate:        &due,
		ReminderActive: true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(db, owner.ID, task.ID, services.TaskInput{
		Content: "no deadline anymore",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.False(t, updated.ReminderActive)

	var stored models.Task
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.Nil(t, stored.DueDate)
	assert.Equal(t, "no deadline anymore", stored.Content)
}

func TestUpdateTask_OtherOwnerForbidden(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "owner2@example.com", true)
	intruder := createUser(t, db, "intruder2@example.com", true)

	task := createTask(t, db, owner.ID, "untouchable")

	_, err := svc.UpdateTask(db, intruder.ID, task.ID, services.TaskInput{Content: "hijacked"})
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestDeleteTask(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "delete@example.com", true)

	task := createTask(t, db, owner.ID, "short-lived")

	require.NoError(t, svc.DeleteTask(db, owner.ID, task.ID))

	_, err := svc.GetTaskByID(db, owner.ID, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	err = svc.DeleteTask(db, owner.ID, task.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)
}

func TestGetTasksPaginated(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "page@example.com", true)
	other := createUser(t, db, "other@example.com", true)

	for i := 0; i < 15; i++ {
		createTask(t, db, owner.ID, "task")
	}
	createTask(t, db, other.ID, "not mine")

	tasks, total, err := svc.GetTasksPaginated(db, owner.ID, "created_at", "desc", "1", "10")
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, tasks, 10)

	tasks, total, err = svc.GetTasksPaginated(db, owner.ID, "created_at", "desc", "2", "10")
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, tasks, 5)
}

func TestGetTasksPaginated_SanitizesArguments(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "sane@example.com", true)

	createTask(t, db, owner.ID, "only one")

	// Hostile sort column and junk paging fall back to safe defaults.
	tasks, total, err := svc.GetTasksPaginated(db, owner.ID, "password; drop table users", "sideways", "zero", "-3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tasks, 1)
}

func TestGetTasksByUser(t *testing.T) {
	db := setupDB(t)
	svc := services.NewTaskService()
	owner := createUser(t, db, "list@example.com", true)
	other := createUser(t, db, "noise@example.com", true)

	createTask(t, db, owner.ID, "mine")
	createTask(t, db, other.ID, "theirs")

	tasks, err := svc.GetTasksByUser(db, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Content)
}
