package app

import (
	"log/slog"
	"time"

	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/infra"
	"github.com/llenroc/Libra/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Libra...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	return nil
}

// SyncInstruments persists the configured instrument set so metadata
// survives config edits: symbols removed from the file go inactive instead
// of disappearing.
func (b *Bootstrap) SyncInstruments() error {
	configured := make(map[string]bool, len(b.Config.Instruments))

	for _, inst := range b.Config.Instruments {
		configured[inst.Symbol] = true
		row := &domain.InstrumentInfo{
			Symbol:    inst.Symbol,
			Precision: inst.VwapPrecision,
			IsActive:  true,
			UpdatedAt: time.Now(),
		}
		if existing, _ := b.Storage.GetInstrument(inst.Symbol); existing != nil {
			row.CreatedAt = existing.CreatedAt
		}
		if err := b.Storage.UpsertInstrument(row); err != nil {
			return err
		}
	}

	known, err := b.Storage.GetAllInstruments()
	if err != nil {
		return err
	}
	for _, inst := range known {
		if inst.IsActive && !configured[inst.Symbol] {
			if err := b.Storage.DeactivateInstrument(inst.Symbol); err != nil {
				return err
			}
			slog.Info("Instrument deactivated", slog.String("symbol", inst.Symbol))
		}
	}

	slog.Info("✨ Instrument sync completed", slog.Int("active", len(configured)))
	return nil
}
