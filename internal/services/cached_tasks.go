package services

import (
	"errors"
	"fmt"
	"time"

	"focusflow/backend/internal/cache"
	"focusflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CachedTaskService layers a redis cache over the task service. Reads try
// the cache first; every write invalidates the owner's cached listings.
// The scheduler never reads through this layer, so a stale listing can
// only affect what a user sees, not which reminders fire.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}

func userTasksKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s", ownerID.String())
}

func (s *CachedTaskService) invalidate(ownerID uuid.UUID, id uuid.UUID) {
	s.cache.Delete(taskKey(id))
	s.cache.Delete(userTasksKey(ownerID))
	s.cache.DeletePattern(fmt.Sprintf("user_tasks_paginated:%s:*", ownerID.String()))
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, ownerID uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, ownerID, input)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(task.ID), task, 30*time.Minute)
	s.cache.Delete(userTasksKey(ownerID))
	s.cache.DeletePattern(fmt.Sprintf("user_tasks_paginated:%s:*", ownerID.String()))

	return task, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	var cachedTask models.Task
	if err := s.cache.Get(taskKey(id), &cachedTask); err == nil {
		// Ownership still applies to cache hits.
		if cachedTask.UserID != ownerID {
			return models.Task{}, ErrForbidden
		}
		return cachedTask, nil
	}

	task, err := s.taskService.GetTaskByID(db, ownerID, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(taskKey(id), task, 30*time.Minute)

	return task, nil
}

func (s *CachedTaskService) GetTasksByUser(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	var cachedTasks []models.Task
	if err := s.cache.Get(userTasksKey(ownerID), &cachedTasks); err == nil {
		return cachedTasks, nil
	}

	tasks, err := s.taskService.GetTasksByUser(db, ownerID)
	if err != nil {
		return tasks, err
	}

	s.cache.Set(userTasksKey(ownerID), tasks, 15*time.Minute)

	return tasks, nil
}

func (s *CachedTaskService) GetTasksPaginated(db *gorm.DB, ownerID uuid.UUID, sortBy, order, page, pageSize string) ([]models.Task, int64, error) {
	cacheKey := fmt.Sprintf("user_tasks_paginated:%s:%s:%s:%s:%s", ownerID.String(), sortBy, order, page, pageSize)

	var cachedResult struct {
		Tasks []models.Task `json:"tasks"`
		Total int64         `json:"total"`
	}
	if err := s.cache.Get(cacheKey, &cachedResult); err == nil {
		return cachedResult.Tasks, cachedResult.Total, nil
	}

	tasks, total, err := s.taskService.GetTasksPaginated(db, ownerID, sortBy, order, page, pageSize)
	if err != nil {
		return tasks, total, err
	}

	result := struct {
		Tasks []models.Task `json:"tasks"`
		Total int64         `json:"total"`
	}{
		Tasks: tasks,
		Total: total,
	}
	s.cache.Set(cacheKey, result, 5*time.Minute)

	return tasks, total, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, input TaskInput) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, ownerID, id, input)
	if err != nil {
		return task, err
	}

	s.invalidate(ownerID, id)

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, ownerID, id); err != nil {
		return err
	}

	s.invalidate(ownerID, id)

	return nil
}

var _ TaskService = (*CachedTaskService)(nil)

// IsNotFound reports whether an error from the task layer maps to a
// missing record rather than a rejected one.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrUserNotFound)
}
