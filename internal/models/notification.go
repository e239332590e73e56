package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model

	UserID    uint   `gorm:"not null;index"`
	ProjectID *uint  `gorm:"index"`
	Type      string `gorm:"not null"`
	Message   string `gorm:"not null"`
	IsRead    bool   `gorm:"not null;default:false"`

	// Relationships
	User    User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
