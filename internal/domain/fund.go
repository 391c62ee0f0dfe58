package domain

import (
	"time"

	"gorm.io/gorm"
)

// Fund is an investment fund owned by exactly one manager. Soft-deleted funds
// drop out of listings and duplicate scans.
type Fund struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	StartYear     int            `gorm:"not null" json:"start_year"`
	FundManagerID uint           `gorm:"not null;index" json:"fund_manager_id"`
	Manager       *FundManager   `gorm:"foreignKey:FundManagerID" json:"manager,omitempty"`
	Aliases       []FundAlias    `gorm:"foreignKey:FundID" json:"aliases,omitempty"`
	Companies     []Company      `gorm:"many2many:company_fund;" json:"companies,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Fund) TableName() string {
	return "funds"
}

// FundAlias is an alternate name owned by a single fund. Names are unique
// across all aliases (case-sensitive).
type FundAlias struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	FundID    uint      `gorm:"not null;index" json:"fund_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FundAlias) TableName() string {
	return "fund_aliases"
}

// CompanyFund is the timestamped join row between funds and companies.
type CompanyFund struct {
	FundID    uint      `gorm:"primaryKey;autoIncrement:false"`
	CompanyID uint      `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CompanyFund) TableName() string {
	return "company_fund"
}

// AliasNames returns the alias names in stored order.
func (f *Fund) AliasNames() []string {
	names := make([]string, 0, len(f.Aliases))
	for _, a := range f.Aliases {
		names = append(names, a.Name)
	}
	return names
}
