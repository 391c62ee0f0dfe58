package warnings

import (
	"context"
	"errors"
	"fmt"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

var ErrWarningNotFound = errors.New("Duplicate warning not found.")

type Service struct {
	DB *gorm.DB
}

// ListUnresolved returns unresolved warnings, newest first, with the fund
// (manager and aliases), the duplicate fund (aliases) and the manager loaded.
func (s *Service) ListUnresolved(ctx context.Context, p pagination.Params) (pagination.Page[domain.DuplicateWarning], error) {
	q := s.DB.WithContext(ctx).Model(&domain.DuplicateWarning{}).Where("is_resolved = ?", false)
	return pagination.Paginate[domain.DuplicateWarning](q, p, func(db *gorm.DB) *gorm.DB {
		return db.
			Preload("Fund", unscoped).
			Preload("Fund.Manager", unscoped).
			Preload("Fund.Aliases", orderByID("fund_aliases")).
			Preload("DuplicateFund", unscoped).
			Preload("DuplicateFund.Aliases", orderByID("fund_aliases")).
			Preload("FundManager", unscoped).
			Order("created_at DESC").
			Order("id DESC")
	})
}

// Resolve marks a warning resolved. Resolving an already resolved warning is a no-op.
func (s *Service) Resolve(ctx context.Context, id uint) (*domain.DuplicateWarning, error) {
	db := s.DB.WithContext(ctx)
	var w domain.DuplicateWarning
	if err := db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarningNotFound
		}
		return nil, fmt.Errorf("load warning: %w", err)
	}
	if !w.IsResolved {
		if err := db.Model(&w).Update("is_resolved", true).Error; err != nil {
			return nil, fmt.Errorf("resolve warning: %w", err)
		}
	}
	var out domain.DuplicateWarning
	err := db.
		Preload("Fund", unscoped).
		Preload("DuplicateFund", unscoped).
		Preload("FundManager", unscoped).
		First(&out, id).Error
	if err != nil {
		return nil, fmt.Errorf("reload warning: %w", err)
	}
	return &out, nil
}

// warnings outlive soft-deleted funds and managers; keep showing what they point at
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id")
	}
}
