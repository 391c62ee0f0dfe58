package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DuplicateWarning records that FundID probably duplicates DuplicateFundID.
// Rows are written by the duplicate listener and only ever move from
// unresolved to resolved.
type DuplicateWarning struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	FundID          uint         `gorm:"not null;index;uniqueIndex:idx_warning_pair" json:"fund_id"`
	DuplicateFundID uint         `gorm:"not null;uniqueIndex:idx_warning_pair" json:"duplicate_fund_id"`
	MatchedName     string       `gorm:"size:255;not null" json:"matched_name"`
	FundManagerID   uint         `gorm:"not null;index" json:"fund_manager_id"`
	IsResolved      bool         `gorm:"not null;default:false;index" json:"is_resolved"`
	Fund            *Fund        `gorm:"foreignKey:FundID" json:"fund,omitempty"`
	DuplicateFund   *Fund        `gorm:"foreignKey:DuplicateFundID" json:"duplicate_fund,omitempty"`
	FundManager     *FundManager `gorm:"foreignKey:FundManagerID" json:"fund_manager,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (DuplicateWarning) TableName() string {
	return "duplicate_fund_warnings"
}

// FailedNotification is a queued notification that ran out of attempts.
type FailedNotification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Queue     string         `gorm:"size:255;not null;index" json:"queue"`
	MessageID string         `gorm:"size:64;not null" json:"message_id"`
	Payload   datatypes.JSON `json:"payload"`
	Attempts  int            `gorm:"not null" json:"attempts"`
	Error     string         `gorm:"type:text" json:"error"`
	FailedAt  time.Time      `gorm:"not null" json:"failed_at"`
}

func (FailedNotification) TableName() string {
	return "failed_notifications"
}
