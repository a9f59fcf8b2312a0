package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Task struct {
	ID                  uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID              uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Content             string     `json:"content" gorm:"not null"`
	DueDate             *time.Time `json:"due_date"`
	ReminderActive      bool       `json:"reminder_active" gorm:"default:false"`
	ReminderLeadMinutes int        `json:"reminder_lead_minutes" gorm:"default:30"`
	NotifiedAt          *time.Time `json:"notified_at,omitempty"`
	CategoryID          *uuid.UUID `json:"category_id" gorm:"type:uuid"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

type Category struct {
	ID    uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name  string    `json:"name" gorm:"unique;not null"`
	Tasks []Task    `json:"tasks,omitempty" gorm:"foreignKey:CategoryID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
