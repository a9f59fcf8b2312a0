package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"focusflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskInput carries the caller-settable fields of a task. Updates replace
// every field; the owner and id never change after creation.
type TaskInput struct {
	Content             string     `json:"content" binding:"required"`
	DueDate             *time.Time `json:"due_date"`
	ReminderActive      bool       `json:"reminder_active"`
	ReminderLeadMinutes int        `json:"reminder_lead_minutes"`
	CategoryID          *uuid.UUID `json:"category_id"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, ownerID uuid.UUID, input TaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error)
	GetTasksByUser(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error)
	GetTasksPaginated(db *gorm.DB, ownerID uuid.UUID, sortBy, order, page, pageSize string) ([]models.Task, int64, error)
	UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, input TaskInput) (models.Task, error)
	DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// getOwned fetches a task and enforces the ownership invariant. A missing
// record and a record owned by another user fail differently.
func getOwned(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task, ErrTaskNotFound
		}
		return task, err
	}
	if task.UserID != ownerID {
		return task, ErrForbidden
	}
	return task, nil
}

func validateInput(db *gorm.DB, input *TaskInput) error {
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return ErrContentRequired
	}
	if input.ReminderLeadMinutes <= 0 {
		input.ReminderLeadMinutes = 30
	}
	if input.CategoryID != nil {
		var category models.Category
		if err := db.First(&category, "id = ?", *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, ownerID uuid.UUID, input TaskInput) (models.Task, error) {
	if err := validateInput(db, &input); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ID:                  uuid.Must(uuid.NewV4()),
		UserID:              ownerID,
		Content:             input.Content,
		DueDate:             input.DueDate,
		ReminderActive:      input.ReminderActive,
		ReminderLeadMinutes: input.ReminderLeadMinutes,
		CategoryID:          input.CategoryID,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	return getOwned(db, ownerID, id)
}

func (s *TaskServiceImpl) GetTasksByUser(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("user_id = ?", ownerID).Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTasksPaginated(db *gorm.DB, ownerID uuid.UUID, sortBy, order, page, pageSize string) ([]models.Task, int64, error) {
	switch sortBy {
	case "created_at", "due_date", "content":
	default:
		sortBy = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	pageNum, err := strconv.Atoi(page)
	if err != nil || pageNum < 1 {
		pageNum = 1
	}
	size, err := strconv.Atoi(pageSize)
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	scoped := db.Model(&models.Task{}).Where("user_id = ?", ownerID)

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err = scoped.
		Order(sortBy + " " + order).
		Offset((pageNum - 1) * size).
		Limit(size).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := getOwned(db, ownerID, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := validateInput(db, &input); err != nil {
		return models.Task{}, err
	}

	task.Content = input.Content
	task.DueDate = input.DueDate
	task.ReminderActive = input.ReminderActive
	task.ReminderLeadMinutes = input.ReminderLeadMinutes
	task.CategoryID = input.CategoryID

	// Select lists the mutable columns; due_date and category_id must be
	// writable back to NULL.
	err = db.Model(&task).
		Select("content", "due_date", "reminder_active", "reminder_lead_minutes", "category_id").
		Updates(map[string]interface{}{
			"content":               task.Content,
			"due_date":              task.DueDate,
			"reminder_active":       task.ReminderActive,
			"reminder_lead_minutes": task.ReminderLeadMinutes,
			"category_id":           task.CategoryID,
		}).Error
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	task, err := getOwned(db, ownerID, id)
	if err != nil {
		return err
	}
	return db.Delete(&task).Error
}
