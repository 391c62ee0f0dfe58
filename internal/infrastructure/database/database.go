package database

import (
	"fmt"
	"strings"

	"canoe-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Open opens a GORM DB from DSN. Postgres DSNs go through pgx with
// PreferSimpleProtocol so poolers (PgBouncer, Supabase, Render) don't trip on
// 42P05 "prepared statement already exists". A sqlite: prefix opens a local
// file or, with sqlite::memory:, an in-memory database.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if strings.HasPrefix(dsn, sqlitePrefix) {
		path := strings.TrimPrefix(dsn, sqlitePrefix)
		db, err := gorm.Open(sqlite.Open(path+sqliteParams(path)), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if path == ":memory:" {
			// every pooled connection would otherwise get its own empty database
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func sqliteParams(path string) string {
	if strings.Contains(path, "?") {
		return ""
	}
	return "?_pragma=foreign_keys(1)"
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.FundManager{},
		&domain.Company{},
		&domain.Fund{},
		&domain.FundAlias{},
		&domain.CompanyFund{},
		&domain.DuplicateWarning{},
		&domain.FailedNotification{},
	}
}

// AutoMigrate registers the timestamped company_fund join model and migrates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Fund{}, "Companies", &domain.CompanyFund{}); err != nil {
		return fmt.Errorf("setup company_fund: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
