package funds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"canoe-backend/internal/application/duplicates"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrFundNotFound = errors.New("Fund not found.")

// Notifier delivers a duplicate notification to whatever persists warnings.
type Notifier interface {
	Publish(ctx context.Context, evt domain.DuplicateFundDetected) error
}

type Service struct {
	DB       *gorm.DB
	Detector *duplicates.Detector
	Notifier Notifier
}

// NewService wires a Detector on the same DB.
func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{DB: db, Detector: &duplicates.Detector{DB: db}, Notifier: notifier}
}

type CreateFundInput struct {
	Name          string
	StartYear     int
	FundManagerID uint
	Aliases       []string
	CompanyIDs    []uint
}

// UpdateFundInput carries only what the client sent. A nil Aliases or
// CompanyIDs leaves that relation alone; an empty, non-nil slice clears it.
type UpdateFundInput struct {
	Name          *string
	StartYear     *int
	FundManagerID *uint
	Aliases       []string
	CompanyIDs    []uint
}

type ListFilter struct {
	Name          string
	FundManagerID *uint
	Year          *int
	CompanyID     *uint
}

// Create stores the fund with its aliases and company links in one
// transaction, then checks the manager's other funds for duplicates. A
// notification failure is logged and does not fail the create.
func (s *Service) Create(ctx context.Context, in CreateFundInput) (*domain.Fund, error) {
	fund := &domain.Fund{
		Name:          in.Name,
		StartYear:     in.StartYear,
		FundManagerID: in.FundManagerID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(fund).Error; err != nil {
			return fmt.Errorf("create fund: %w", err)
		}
		if err := createAliases(tx, fund.ID, in.Aliases); err != nil {
			return err
		}
		return attachCompanies(tx, fund.ID, in.CompanyIDs)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.Get(ctx, fund.ID)
	if err != nil {
		return nil, err
	}
	s.checkForDuplicates(ctx, *loaded)
	return loaded, nil
}

func (s *Service) checkForDuplicates(ctx context.Context, fund domain.Fund) {
	if s.Detector == nil {
		return
	}
	matches, err := s.Detector.Detect(ctx, fund)
	if err != nil {
		log.Error().Err(err).Uint("fund_id", fund.ID).Msg("Duplicate detection failed")
		return
	}
	if len(matches) == 0 {
		return
	}
	first := matches[0]
	evt := domain.DuplicateFundDetected{
		FundID:          fund.ID,
		DuplicateFundID: first.Fund.ID,
		MatchedName:     first.MatchedName,
		FundManagerID:   fund.FundManagerID,
	}
	log.Info().
		Uint("fund_id", evt.FundID).
		Uint("duplicate_fund_id", evt.DuplicateFundID).
		Str("matched_name", evt.MatchedName).
		Int("matches", len(matches)).
		Msg("Possible duplicate fund")
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Uint("fund_id", evt.FundID).Msg("Failed to publish duplicate notification")
	}
}

// Update applies the supplied attributes and relation replacements in one
// transaction. Duplicate detection does not run on update.
func (s *Service) Update(ctx context.Context, id uint, in UpdateFundInput) (*domain.Fund, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fund domain.Fund
		if err := tx.First(&fund, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFundNotFound
			}
			return err
		}
		attrs := map[string]interface{}{}
		if in.Name != nil {
			attrs["name"] = *in.Name
		}
		if in.StartYear != nil {
			attrs["start_year"] = *in.StartYear
		}
		if in.FundManagerID != nil {
			attrs["fund_manager_id"] = *in.FundManagerID
		}
		if len(attrs) > 0 {
			if err := tx.Model(&fund).Updates(attrs).Error; err != nil {
				return fmt.Errorf("update fund: %w", err)
			}
		}
		if in.Aliases != nil {
			if err := tx.Where("fund_id = ?", id).Delete(&domain.FundAlias{}).Error; err != nil {
				return fmt.Errorf("clear aliases: %w", err)
			}
			if err := createAliases(tx, id, in.Aliases); err != nil {
				return err
			}
		}
		if in.CompanyIDs != nil {
			return syncCompanies(tx, id, in.CompanyIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func createAliases(tx *gorm.DB, fundID uint, names []string) error {
	if len(names) == 0 {
		return nil
	}
	rows := make([]domain.FundAlias, 0, len(names))
	for _, n := range names {
		rows = append(rows, domain.FundAlias{Name: n, FundID: fundID})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("create aliases: %w", err)
	}
	return nil
}

func attachCompanies(tx *gorm.DB, fundID uint, companyIDs []uint) error {
	ids := uniqueIDs(companyIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]domain.CompanyFund, 0, len(ids))
	for _, cid := range ids {
		rows = append(rows, domain.CompanyFund{FundID: fundID, CompanyID: cid})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("attach companies: %w", err)
	}
	return nil
}

// syncCompanies makes the fund's link set equal to companyIDs, touching only
// rows that change.
func syncCompanies(tx *gorm.DB, fundID uint, companyIDs []uint) error {
	ids := uniqueIDs(companyIDs)
	detach := tx.Where("fund_id = ?", fundID)
	if len(ids) > 0 {
		detach = detach.Where("company_id NOT IN ?", ids)
	}
	if err := detach.Delete(&domain.CompanyFund{}).Error; err != nil {
		return fmt.Errorf("detach companies: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	var existing []uint
	if err := tx.Model(&domain.CompanyFund{}).Where("fund_id = ?", fundID).Pluck("company_id", &existing).Error; err != nil {
		return fmt.Errorf("load company links: %w", err)
	}
	have := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return attachCompanies(tx, fundID, missing)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Manager").
		Preload("Aliases", func(db *gorm.DB) *gorm.DB { return db.Order("fund_aliases.id") }).
		Preload("Companies", func(db *gorm.DB) *gorm.DB { return db.Order("companies.id") })
}

// Get loads a fund with manager, aliases and companies.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Fund, error) {
	var fund domain.Fund
	if err := withRelations(s.DB.WithContext(ctx)).First(&fund, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFundNotFound
		}
		return nil, fmt.Errorf("load fund: %w", err)
	}
	return &fund, nil
}

// List returns one page of funds matching f, relations loaded, ordered by id.
func (s *Service) List(ctx context.Context, f ListFilter, p pagination.Params) (pagination.Page[domain.Fund], error) {
	q := s.DB.WithContext(ctx).Model(&domain.Fund{})
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(funds.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if f.FundManagerID != nil {
		q = q.Where("funds.fund_manager_id = ?", *f.FundManagerID)
	}
	if f.Year != nil {
		q = q.Where("funds.start_year = ?", *f.Year)
	}
	if f.CompanyID != nil {
		q = q.Where(`EXISTS (SELECT 1 FROM company_fund
			JOIN companies ON companies.id = company_fund.company_id AND companies.deleted_at IS NULL
			WHERE company_fund.fund_id = funds.id AND company_fund.company_id = ?)`, *f.CompanyID)
	}
	return pagination.Paginate[domain.Fund](q, p, func(db *gorm.DB) *gorm.DB {
		return withRelations(db).Order("funds.id")
	})
}

// Delete soft-deletes a fund.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&domain.Fund{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete fund: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFundNotFound
	}
	return nil
}
