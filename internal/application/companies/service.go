package companies

import (
	"context"
	"errors"
	"fmt"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"

	"gorm.io/gorm"
)

var ErrCompanyNotFound = errors.New("Company not found.")

type Service struct {
	DB *gorm.DB
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[domain.Company], error) {
	q := s.DB.WithContext(ctx).Model(&domain.Company{})
	return pagination.Paginate[domain.Company](q, p, func(db *gorm.DB) *gorm.DB {
		return db.Order("companies.id")
	})
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Company, error) {
	var c domain.Company
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("load company: %w", err)
	}
	return &c, nil
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Company, error) {
	c := &domain.Company{Name: name}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uint, name *string) (*domain.Company, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if err := s.DB.WithContext(ctx).Model(c).Update("name", *name).Error; err != nil {
			return nil, fmt.Errorf("update company: %w", err)
		}
	}
	return c, nil
}

// Delete soft-deletes a company. Its fund links stay in place and stop
// showing once the company is filtered out.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&domain.Company{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete company: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
