package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is an append-only audit line for a project. TaskID and UserID are
// optional so the row survives task or user deletion.
type Activity struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index"`
	TaskID    *uint
	UserID    *uint
	Action    string         `gorm:"not null"`
	Details   datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Task    *Task   `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	User    *User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
