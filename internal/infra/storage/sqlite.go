package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/llenroc/Libra/internal/domain"
)

// Storage persists instrument metadata and closed-order snapshots.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.InstrumentInfo{}, &domain.OrderArchive{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "Libra", "data", "libra.db"), nil
}

// ======================================================================================
// Instrument Operations
// ======================================================================================

// UpsertInstrument creates or updates instrument metadata
func (s *Storage) UpsertInstrument(inst *domain.InstrumentInfo) error {
	return s.db.Save(inst).Error
}

// GetInstrument retrieves instrument metadata by symbol
func (s *Storage) GetInstrument(symbol string) (*domain.InstrumentInfo, error) {
	var inst domain.InstrumentInfo
	err := s.db.First(&inst, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &inst, err
}

// GetAllInstruments retrieves all instruments
func (s *Storage) GetAllInstruments() ([]domain.InstrumentInfo, error) {
	var instruments []domain.InstrumentInfo
	err := s.db.Find(&instruments).Error
	return instruments, err
}

// DeactivateInstrument marks a symbol as no longer tracked without losing
// its history.
func (s *Storage) DeactivateInstrument(symbol string) error {
	return s.db.Model(&domain.InstrumentInfo{}).
		Where("symbol = ?", symbol).
		Update("is_active", false).Error
}

// ======================================================================================
// Order Archive Operations
// ======================================================================================

// ArchiveOrder persists a terminal order snapshot.
func (s *Storage) ArchiveOrder(rec domain.OrderRecord) error {
	archive := domain.OrderArchive{
		OrderID:        rec.Key(),
		ClientOrderID:  rec.ClientOrderID,
		Symbol:         rec.Symbol,
		Side:           rec.Side,
		Price:          rec.Price.String(),
		OriginalAmount: rec.OriginalAmount.String(),
		ExecutedAmount: rec.ExecutedAmount.String(),
		Status:         rec.Status,
		IsCancelled:    rec.IsCancelled,
		ClosedAt:       time.Now(),
	}
	return s.db.Save(&archive).Error
}

// ListArchived returns archived orders for a symbol, newest first.
func (s *Storage) ListArchived(symbol string) ([]domain.OrderArchive, error) {
	var archived []domain.OrderArchive
	err := s.db.Where("symbol = ?", symbol).
		Order("closed_at desc").
		Find(&archived).Error
	return archived, err
}
