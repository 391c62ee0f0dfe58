package database

import (
	"context"
	"fmt"

	"canoe-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedFund struct {
	name      string
	manager   string
	startYear int
	aliases   []string
	companies []string
}

var (
	seedManagers  = []string{"BlackRock", "Vanguard", "Fidelity Investments"}
	seedCompanies = []string{"Apple Inc.", "Alphabet Inc.", "Microsoft Corp.", "Amazon.com Inc.", "Tesla Inc."}
	seedFunds     = []seedFund{
		{"BlackRock Growth Fund", "BlackRock", 2015, []string{"BR Growth", "BlackRock GF"}, []string{"Apple Inc.", "Alphabet Inc.", "Microsoft Corp."}},
		{"BlackRock Technology Fund", "BlackRock", 2018, []string{"BR Tech Fund"}, []string{"Apple Inc.", "Alphabet Inc.", "Tesla Inc."}},
		{"Vanguard Total Market Index", "Vanguard", 2010, []string{"VTMI"}, []string{"Apple Inc.", "Alphabet Inc.", "Microsoft Corp.", "Amazon.com Inc."}},
		{"Vanguard Growth Fund", "Vanguard", 2012, nil, []string{"Tesla Inc.", "Amazon.com Inc."}},
		{"Fidelity Blue Chip Fund", "Fidelity Investments", 2016, []string{"Fidelity BC", "FBC Fund"}, []string{"Apple Inc.", "Microsoft Corp.", "Amazon.com Inc."}},
	}
)

// Seed loads the demo managers, companies and funds. It is a no-op when any
// manager already exists.
func Seed(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.FundManager{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		managers := make(map[string]uint, len(seedManagers))
		for _, name := range seedManagers {
			m := domain.FundManager{Name: name}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed manager %q: %w", name, err)
			}
			managers[name] = m.ID
		}
		companies := make(map[string]uint, len(seedCompanies))
		for _, name := range seedCompanies {
			c := domain.Company{Name: name}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("seed company %q: %w", name, err)
			}
			companies[name] = c.ID
		}
		for _, sf := range seedFunds {
			f := domain.Fund{Name: sf.name, StartYear: sf.startYear, FundManagerID: managers[sf.manager]}
			if err := tx.Omit(clause.Associations).Create(&f).Error; err != nil {
				return fmt.Errorf("seed fund %q: %w", sf.name, err)
			}
			for _, alias := range sf.aliases {
				if err := tx.Create(&domain.FundAlias{Name: alias, FundID: f.ID}).Error; err != nil {
					return fmt.Errorf("seed alias %q: %w", alias, err)
				}
			}
			for _, company := range sf.companies {
				if err := tx.Create(&domain.CompanyFund{FundID: f.ID, CompanyID: companies[company]}).Error; err != nil {
					return fmt.Errorf("seed link %q/%q: %w", sf.name, company, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
