package services_test

import (
	"testing"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	db := setupDB(t)
	svc := services.NewCategoryService()

	category, err := svc.CreateCategory(db, "  errands ")
	require.NoError(t, err)
	assert.Equal(t, "errands", category.Name)

	_, err = svc.CreateCategory(db, "errands")
	assert.ErrorIs(t, err, services.ErrCategoryTaken)

	_, err = svc.CreateCategory(db, "   ")
	assert.ErrorIs(t, err, services.ErrContentRequired)
}

func TestGetCategories_SortedByName(t *testing.T) {
	db := setupDB(t)
	svc := services.NewCategoryService()

	for _, name := range []string{"work", "chores", "health"} {
		_, err := svc.CreateCategory(db, name)
		require.NoError(t, err)
	}

	categories, err := svc.GetCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "chores", categories[0].Name)
	assert.Equal(t, "work", categories[2].Name)
}

func TestDeleteCategory_DetachesTasks(t *testing.T) {
	db := setupDB(t)
	svc := services.NewCategoryService()
	taskService := services.NewTaskService()
	owner := createUser(t, db, "detach@example.com", true)

	category, err := svc.CreateCategory(db, "projects")
	require.NoError(t, err)

	task, err := taskService.CreateTask(db, owner.ID, services.TaskInput{
		Content:    "tagged",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(db, category.ID))

	var stored models.Task
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.Nil(t, stored.CategoryID)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	db := setupDB(t)
	svc := services.NewCategoryService()

	err := svc.DeleteCategory(db, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
}
