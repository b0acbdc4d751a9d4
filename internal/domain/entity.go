package domain

import "time"

// InstrumentInfo is persisted metadata for a tracked trading pair.
type InstrumentInfo struct {
	Symbol    string    `gorm:"primaryKey" json:"symbol"`
	Precision int32     `json:"precision"` // VWAP rounding places
	IsActive  bool      `json:"is_active" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderArchive is a terminal order snapshot persisted when an order leaves
// the live registry (filled or cancelled). Best-effort only.
type OrderArchive struct {
	OrderID        string    `gorm:"primaryKey" json:"order_id"`
	ClientOrderID  string    `json:"client_order_id"`
	Symbol         string    `json:"symbol" gorm:"index"`
	Side           string    `json:"side"`
	Price          string    `json:"price"`
	OriginalAmount string    `json:"original_amount"`
	ExecutedAmount string    `json:"executed_amount"`
	Status         string    `json:"status"`
	IsCancelled    bool      `json:"is_cancelled"`
	ClosedAt       time.Time `json:"closed_at"`
}
