package duplicates

import (
	"context"
	"fmt"

	"canoe-backend/internal/domain"

	"gorm.io/gorm"
)

// Detector loads a fund's siblings and runs Find over them.
type Detector struct {
	DB *gorm.DB
}

// Siblings returns the non-deleted funds of managerID other than excludeID,
// aliases loaded, ordered by id.
func (d *Detector) Siblings(ctx context.Context, managerID, excludeID uint) ([]domain.Fund, error) {
	var funds []domain.Fund
	err := d.DB.WithContext(ctx).
		Preload("Aliases", func(db *gorm.DB) *gorm.DB { return db.Order("fund_aliases.id") }).
		Where("fund_manager_id = ? AND id <> ?", managerID, excludeID).
		Order("id").
		Find(&funds).Error
	if err != nil {
		return nil, fmt.Errorf("load sibling funds: %w", err)
	}
	return funds, nil
}

// Detect returns the duplicate matches for fund, which must have its aliases loaded.
func (d *Detector) Detect(ctx context.Context, fund domain.Fund) ([]Match, error) {
	siblings, err := d.Siblings(ctx, fund.FundManagerID, fund.ID)
	if err != nil {
		return nil, err
	}
	return Find(fund, siblings), nil
}
