package funds

import (
	"context"
	"fmt"

	"canoe-backend/internal/domain"
)

// ManagerExists reports whether a non-deleted manager has id.
func (s *Service) ManagerExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&domain.FundManager{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check manager: %w", err)
	}
	return n > 0, nil
}

// MissingCompanyIDs returns the ids that match no non-deleted company.
func (s *Service) MissingCompanyIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	missing := map[uint]bool{}
	if len(ids) == 0 {
		return missing, nil
	}
	var found []uint
	if err := s.DB.WithContext(ctx).Model(&domain.Company{}).Where("id IN ?", uniqueIDs(ids)).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("check companies: %w", err)
	}
	have := make(map[uint]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing[id] = true
		}
	}
	return missing, nil
}

// TakenAliasNames returns the names already used as an alias of another fund
// (exceptFundID's own aliases are ignored) or as any fund's name, deleted
// funds included.
func (s *Service) TakenAliasNames(ctx context.Context, names []string, exceptFundID uint) (map[string]bool, error) {
	taken := map[string]bool{}
	if len(names) == 0 {
		return taken, nil
	}
	var aliasHits []string
	q := s.DB.WithContext(ctx).Model(&domain.FundAlias{}).Where("name IN ?", names)
	if exceptFundID != 0 {
		q = q.Where("fund_id <> ?", exceptFundID)
	}
	if err := q.Pluck("name", &aliasHits).Error; err != nil {
		return nil, fmt.Errorf("check aliases: %w", err)
	}
	var fundHits []string
	if err := s.DB.WithContext(ctx).Unscoped().Model(&domain.Fund{}).Where("name IN ?", names).Pluck("name", &fundHits).Error; err != nil {
		return nil, fmt.Errorf("check fund names: %w", err)
	}
	for _, n := range aliasHits {
		taken[n] = true
	}
	for _, n := range fundHits {
		taken[n] = true
	}
	return taken, nil
}
