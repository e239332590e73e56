package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Expense struct {
	gorm.Model

	ProjectID   uint            `gorm:"not null;index"`
	TaskID      *uint           `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Description string          `gorm:"not null"`
	Category    string          `gorm:"not null;default:'General'"`
	CreatedBy   uint            `gorm:"not null;index"`
	Date        time.Time       `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Task    *Task   `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Creator User    `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
