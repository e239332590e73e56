package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name        string          `gorm:"not null"`
	Description string
	TotalBudget decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Currency    string          `gorm:"not null;default:'RWF'"`
	Status      string          `gorm:"not null;default:'active'"`
	OwnerID     uint            `gorm:"not null;index"`
	DueDate     *time.Time

	// Relationships
	Owner         User            `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members       []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks         []Task          `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Expenses      []Expense       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Activities    []Activity      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
