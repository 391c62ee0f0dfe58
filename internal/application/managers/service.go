package managers

import (
	"context"
	"errors"
	"fmt"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

var (
	ErrManagerNotFound = errors.New("Fund manager not found.")
	ErrManagerHasFunds = errors.New("Cannot delete fund manager with existing funds. Remove or reassign funds first.")
)

type Service struct {
	DB *gorm.DB
}

const fundsCountSelect = `fund_managers.*, (SELECT COUNT(*) FROM funds
	WHERE funds.fund_manager_id = fund_managers.id AND funds.deleted_at IS NULL) AS funds_count`

func withFundsCount(db *gorm.DB) *gorm.DB {
	return db.Select(fundsCountSelect)
}

// List returns one page of managers with their fund counts, ordered by id.
func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[domain.FundManager], error) {
	q := s.DB.WithContext(ctx).Model(&domain.FundManager{})
	return pagination.Paginate[domain.FundManager](q, p, func(db *gorm.DB) *gorm.DB {
		return withFundsCount(db).Order("fund_managers.id")
	})
}

// Get loads a manager with its fund count.
func (s *Service) Get(ctx context.Context, id uint) (*domain.FundManager, error) {
	var m domain.FundManager
	if err := withFundsCount(s.DB.WithContext(ctx)).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, fmt.Errorf("load manager: %w", err)
	}
	return &m, nil
}

func (s *Service) Create(ctx context.Context, name string) (*domain.FundManager, error) {
	m := &domain.FundManager{Name: name}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("create manager: %w", err)
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id uint, name *string) (*domain.FundManager, error) {
	db := s.DB.WithContext(ctx)
	var m domain.FundManager
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, fmt.Errorf("load manager: %w", err)
	}
	if name != nil {
		if err := db.Model(&m).Update("name", *name).Error; err != nil {
			return nil, fmt.Errorf("update manager: %w", err)
		}
	}
	return &m, nil
}

// Delete soft-deletes a manager that owns no funds. The count and delete
// share a transaction.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.FundManager
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrManagerNotFound
			}
			return fmt.Errorf("load manager: %w", err)
		}
		var funds int64
		if err := tx.Model(&domain.Fund{}).Where("fund_manager_id = ?", id).Count(&funds).Error; err != nil {
			return fmt.Errorf("count funds: %w", err)
		}
		if funds > 0 {
			return ErrManagerHasFunds
		}
		if err := tx.Delete(&m).Error; err != nil {
			return fmt.Errorf("delete manager: %w", err)
		}
		return nil
	})
}
