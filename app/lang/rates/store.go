package rates

import (
	"fmt"
	"math/big"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// RateRecord is the persisted rate of one currency.
type RateRecord struct {
	Code      string `gorm:"primaryKey;size:3"`
	Rate      string // exact rational, as formatted by big.Rat
	FetchedAt time.Time
}

// Store persists the last fetched rate table in SQLite.
type Store struct {
	db *gorm.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.AutoMigrate(&RateRecord{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Save replaces the stored table.
func (s *Store) Save(rates map[string]*big.Rat, at time.Time) error {
	records := make([]RateRecord, 0, len(rates))
	for code, r := range rates {
		records = append(records, RateRecord{Code: code, Rate: r.RatString(), FetchedAt: at})
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&RateRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
	})
}

// Load returns the stored table and when it was fetched.
func (s *Store) Load() (map[string]*big.Rat, time.Time, error) {
	var records []RateRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, time.Time{}, err
	}
	out := make(map[string]*big.Rat, len(records))
	var at time.Time
	for _, rec := range records {
		r, ok := new(big.Rat).SetString(rec.Rate)
		if !ok {
			return nil, time.Time{}, fmt.Errorf("stored rate %q for %s", rec.Rate, rec.Code)
		}
		out[rec.Code] = r
		if rec.FetchedAt.After(at) {
			at = rec.FetchedAt
		}
	}
	return out, at, nil
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
