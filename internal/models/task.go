package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'todo'"`
	Progress    int    `gorm:"not null;default:0"` // 0-100
	AssignedTo  *uint  `gorm:"index"`
	DueDate     *time.Time
	Priority    string `gorm:"not null;default:'medium'"`
	Position    int    `gorm:"not null;default:0"`
	CreatedBy   *uint

	// Relationships
	Project  Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User     `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Creator  *User     `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Expenses []Expense `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
