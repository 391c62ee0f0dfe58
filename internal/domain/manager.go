package domain

import (
	"time"

	"gorm.io/gorm"
)

// FundManager sponsors funds. FundsCount is only populated by queries that
// select the funds_count column.
type FundManager struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	FundsCount *int64         `gorm:"column:funds_count;->;-:migration" json:"funds_count,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FundManager) TableName() string {
	return "fund_managers"
}

// Company is a portfolio company linked to funds through company_fund.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
