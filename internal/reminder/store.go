package reminder

import (
	"context"
	"time"

	"focusflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GormStore answers the scheduler's snapshot query against the shared
// database. Owners are preloaded so email delivery has an address to hand.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DueTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("reminder_active = ? AND due_date IS NOT NULL AND due_date <= ?", true, now).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *GormStore) MarkNotified(ctx context.Context, taskID uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", taskID).
		Update("notified_at", at).Error
}
