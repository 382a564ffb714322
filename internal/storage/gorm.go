package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sales-engine/pkg"
)

// Store is the gorm-backed dealership configuration and inventory store. It
// serves the engine's dealership settings, the inventory resolver's vehicle
// queries and the finance calculator's rate, term and fee tables.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) a sqlite store at the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(
		&pkg.Dealership{},
		&pkg.Vehicle{},
		&pkg.CreditTier{},
		&pkg.ModelYearTermRule{},
		&pkg.DealershipFee{},
		&pkg.AiPersonalitySettings{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// GetDealership loads one dealership, or nil when it does not exist.
func (s *Store) GetDealership(ctx context.Context, id int64) (*pkg.Dealership, error) {
	var d pkg.Dealership
	err := s.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading dealership %d: %w", id, err)
	}
	return &d, nil
}

// GetAiSettings loads stored personality settings, or nil when none are
// configured for the dealership.
func (s *Store) GetAiSettings(ctx context.Context, dealershipID int64) (*pkg.AiPersonalitySettings, error) {
	var settings pkg.AiPersonalitySettings
	err := s.db.WithContext(ctx).First(&settings, "dealership_id = ?", dealershipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ai settings for dealership %d: %w", dealershipID, err)
	}
	return &settings, nil
}

// GetByID loads one vehicle scoped to the dealership, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id, dealershipID int64) (*pkg.Vehicle, error) {
	var v pkg.Vehicle
	err := s.db.WithContext(ctx).
		Where("id = ? AND dealership_id = ?", id, dealershipID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading vehicle %d: %w", id, err)
	}
	return &v, nil
}

// QueryByMakeYear filters the dealership's inventory by make (empty matches
// any) and an inclusive model-year range (zero bounds are unbounded), newest
// listings first.
func (s *Store) QueryByMakeYear(ctx context.Context, dealershipID int64, make string, minYear, maxYear, limit int) ([]pkg.Vehicle, error) {
	q := s.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Order("year DESC, created_at DESC").
		Limit(limit)
	if make != "" {
		q = q.Where("make = ?", make)
	}
	if minYear > 0 {
		q = q.Where("year >= ?", minYear)
	}
	if maxYear > 0 {
		q = q.Where("year <= ?", maxYear)
	}

	var vehicles []pkg.Vehicle
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	return vehicles, nil
}

// QueryByPriceRange filters the dealership's inventory by an inclusive price
// range in cents, newest listings first.
func (s *Store) QueryByPriceRange(ctx context.Context, dealershipID int64, minCents, maxCents int64, limit int) ([]pkg.Vehicle, error) {
	var vehicles []pkg.Vehicle
	err := s.db.WithContext(ctx).
		Where("dealership_id = ? AND price_cents >= ? AND price_cents <= ?", dealershipID, minCents, maxCents).
		Order("year DESC, created_at DESC").
		Limit(limit).
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("querying inventory by price: %w", err)
	}
	return vehicles, nil
}

// CreditTiers returns the dealership's active credit tiers.
func (s *Store) CreditTiers(ctx context.Context, dealershipID int64) ([]pkg.CreditTier, error) {
	var tiers []pkg.CreditTier
	err := s.db.WithContext(ctx).
		Where("dealership_id = ? AND is_active = ?", dealershipID, true).
		Order("min_score ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("loading credit tiers: %w", err)
	}
	return tiers, nil
}

// TermRules returns the dealership's term rules in stored order.
func (s *Store) TermRules(ctx context.Context, dealershipID int64) ([]pkg.ModelYearTermRule, error) {
	var rules []pkg.ModelYearTermRule
	err := s.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("loading term rules: %w", err)
	}
	return rules, nil
}

// ActiveFees returns the dealership's active fees.
func (s *Store) ActiveFees(ctx context.Context, dealershipID int64) ([]pkg.DealershipFee, error) {
	var fees []pkg.DealershipFee
	err := s.db.WithContext(ctx).
		Where("dealership_id = ? AND is_active = ?", dealershipID, true).
		Order("display_order ASC").
		Find(&fees).Error
	if err != nil {
		return nil, fmt.Errorf("loading fees: %w", err)
	}
	return fees, nil
}
