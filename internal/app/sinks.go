package app

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
)

// LogSink is the headless presentation: every state change and alert goes
// to the structured log. A UI frontend replaces this with its own sink.
type LogSink struct{}

func (LogSink) PriceChanged(update domain.PriceUpdate) {
	delta := "n/a"
	if d := update.Delta(); d != nil {
		delta = d.String()
	}
	slog.Info("Price changed",
		slog.String("symbol", update.Symbol),
		slog.String("price", update.Trade.Price.String()),
		slog.String("delta", delta))
}

func (LogSink) OrderBucketChanged(key string, from, to domain.Bucket) {
	slog.Info("Order moved",
		slog.String("order", key),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

func (LogSink) ValuationChanged(total decimal.Decimal) {
	slog.Info("Account value changed", slog.String("total", total.String()))
}

func (LogSink) Notify(alert domain.Alert) {
	if alert.Level == domain.AlertError {
		slog.Error("ALERT", slog.String("message", alert.Message))
		return
	}
	slog.Warn("ALERT", slog.String("message", alert.Message))
}
