package services

import (
	"errors"
	"strings"

	"focusflow/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(db *gorm.DB, name string) (models.Category, error)
	GetCategories(db *gorm.DB) ([]models.Category, error)
	DeleteCategory(db *gorm.DB, id uuid.UUID) error
}

type CategoryServiceImpl struct{}

func NewCategoryService() *CategoryServiceImpl {
	return &CategoryServiceImpl{}
}

func (s *CategoryServiceImpl) CreateCategory(db *gorm.DB, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ErrContentRequired
	}

	var existing models.Category
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		return models.Category{}, ErrCategoryTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, err
	}

	category := models.Category{
		ID:   uuid.Must(uuid.NewV4()),
		Name: name,
	}
	if err := db.Create(&category).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes a category and detaches its tasks. Tasks survive
// with a cleared category reference; nothing cascades.
func (s *CategoryServiceImpl) DeleteCategory(db *gorm.DB, id uuid.UUID) error {
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Model(&models.Task{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&category).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
