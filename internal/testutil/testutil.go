// Package testutil provides in-memory database fixtures for tests.
package testutil

import (
	"testing"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DB opens a migrated in-memory SQLite database that lives for the test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Manager inserts a fund manager.
func Manager(t *testing.T, db *gorm.DB, name string) domain.FundManager {
	t.Helper()
	m := domain.FundManager{Name: name}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// Company inserts a company.
func Company(t *testing.T, db *gorm.DB, name string) domain.Company {
	t.Helper()
	c := domain.Company{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Fund inserts a fund with aliases directly, bypassing the write workflow.
func Fund(t *testing.T, db *gorm.DB, managerID uint, name string, startYear int, aliases ...string) domain.Fund {
	t.Helper()
	f := domain.Fund{Name: name, StartYear: startYear, FundManagerID: managerID}
	require.NoError(t, db.Omit(clause.Associations).Create(&f).Error)
	for _, a := range aliases {
		alias := domain.FundAlias{Name: a, FundID: f.ID}
		require.NoError(t, db.Create(&alias).Error)
		f.Aliases = append(f.Aliases, alias)
	}
	return f
}

// Link attaches companies to a fund.
func Link(t *testing.T, db *gorm.DB, fundID uint, companyIDs ...uint) {
	t.Helper()
	for _, id := range companyIDs {
		require.NoError(t, db.Create(&domain.CompanyFund{FundID: fundID, CompanyID: id}).Error)
	}
}
