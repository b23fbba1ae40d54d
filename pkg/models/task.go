package model

import (
	"time"

	"taskmaster.com/taskmaster/internal/constants"
)

type Task struct {
	ID          string                 `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string                 `gorm:"size:36;not null;index" json:"owner_id"`
	Owner       *User                  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string                 `gorm:"not null" json:"title"`
	Description string                 `gorm:"not null" json:"description"`
	Priority    constants.TaskPriority `gorm:"type:varchar(10);not null;index" json:"priority"`
	Status      constants.TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time              `gorm:"not null" json:"created_at"`
	DueDate     *time.Time             `json:"due_date"`
}
