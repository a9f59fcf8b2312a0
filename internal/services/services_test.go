package services_test

import (
	"testing"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}, &models.Category{}, &models.Task{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, verified bool) *models.User {
	t.Helper()

	user := &models.User{
		ID:            uuid.Must(uuid.NewV4()),
		Email:         email,
		Password:      "$2a$10$placeholderhash",
		EmailVerified: verified,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, ownerID uuid.UUID, content string) models.Task {
	t.Helper()

	taskService := services.NewTaskService()
	task, err := taskService.CreateTask(db, ownerID, services.TaskInput{Content: content})
	require.NoError(t, err)
	return task
}
