package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/event"
	"github.com/llenroc/Libra/internal/infra"
	"github.com/llenroc/Libra/internal/infra/gemini"
	"github.com/llenroc/Libra/internal/infra/storage"
	"github.com/llenroc/Libra/internal/monitor"
	"github.com/llenroc/Libra/internal/service"
)

// Supervisor owns the streaming core: the price book, the order registry,
// the heartbeat monitor and the stream workers. It wires stream payloads to
// the services and decides what happens when a stream misbehaves.
type Supervisor struct {
	cfg     *infra.Config
	client  *gemini.Client
	sink    domain.PresentationSink
	alerts  domain.AlertSink
	pending func() []domain.PendingOrder

	book       *service.PriceBook
	registry   *service.OrderRegistry
	valuator   *service.Valuator
	heartbeat  *monitor.Heartbeat
	backfiller *service.Backfiller

	orderWorker   *gemini.OrderWorker
	marketWorkers []*gemini.MarketWorker

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSupervisor wires the core together. pending supplies the outstanding
// submission snapshot used to rebuild the Pending bucket after each order
// event batch; store may be nil to disable order archival.
func NewSupervisor(
	cfg *infra.Config,
	client *gemini.Client,
	sink domain.PresentationSink,
	alerts domain.AlertSink,
	pending func() []domain.PendingOrder,
	store *storage.Storage,
) *Supervisor {
	s := &Supervisor{
		cfg:     cfg,
		client:  client,
		sink:    sink,
		alerts:  alerts,
		pending: pending,
		ctx:     context.Background(),
	}

	s.book = service.NewPriceBook(cfg.Precisions(), sink.PriceChanged)
	s.valuator = service.NewValuator(client, s.book, sink.ValuationChanged)
	s.backfiller = service.NewBackfiller(client, s.book)

	var archive func(domain.OrderRecord)
	if store != nil {
		archive = func(rec domain.OrderRecord) {
			if err := store.ArchiveOrder(rec); err != nil {
				slog.Warn("Order archive failed", slog.String("key", rec.Key()), slog.Any("error", err))
			}
		}
	}
	s.registry = service.NewOrderRegistry(
		sink.OrderBucketChanged,
		func() { s.valuator.Refresh(s.ctx) },
		archive,
	)

	s.heartbeat = monitor.NewHeartbeat(
		time.Duration(cfg.Heartbeat.StaleAfterMS)*time.Millisecond,
		time.Duration(cfg.Heartbeat.CheckIntervalMS)*time.Millisecond,
		s.onStaleHeartbeat,
	)

	s.orderWorker = gemini.NewOrderWorker(
		cfg.API.Gemini.WSURL,
		client.Signer(),
		s.handleOrderEvents,
		s.heartbeat.Reset,
		alerts,
	)
	for _, symbol := range cfg.Symbols() {
		s.marketWorkers = append(s.marketWorkers,
			gemini.NewMarketWorker(cfg.API.Gemini.WSURL, symbol, s.book.ObserveTrade))
	}

	return s
}

// Book exposes the price book for read access (VWAP and last price queries).
func (s *Supervisor) Book() *service.PriceBook {
	return s.book
}

// Registry exposes the order registry for read access.
func (s *Supervisor) Registry() *service.OrderRegistry {
	return s.registry
}

// Valuator exposes the account valuator.
func (s *Supervisor) Valuator() *service.Valuator {
	return s.valuator
}

// Start seeds last prices, opens all streams and launches the monitors and
// the VWAP backfill. It returns once everything is launched; streams connect
// and retry in the background.
func (s *Supervisor) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.seedLastPrices(s.ctx)

	for _, w := range s.marketWorkers {
		if err := w.Connect(s.ctx); err != nil {
			return err
		}
	}
	if err := s.orderWorker.Connect(s.ctx); err != nil {
		return err
	}

	s.heartbeat.Start(s.ctx)
	s.valuator.Start(s.ctx)

	go func() {
		failed := s.backfiller.RunAll(s.ctx, s.book.Symbols())
		for symbol, err := range failed {
			s.alerts.Notify(domain.NewAlert(domain.AlertError,
				fmt.Sprintf("VWAP backfill failed for %s: %v", symbol, err)))
		}
	}()

	slog.Info("Supervisor started", slog.Int("instruments", len(s.marketWorkers)))
	return nil
}

// Stop tears the core down in reverse order.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.orderWorker.Disconnect()
	for _, w := range s.marketWorkers {
		w.Disconnect()
	}
	s.valuator.Stop()
	s.heartbeat.Stop()
	slog.Info("Supervisor stopped")
}

// seedLastPrices primes last prices over REST so valuation and the display
// have data before the first live trade. Failures leave a symbol unseeded.
func (s *Supervisor) seedLastPrices(ctx context.Context) {
	for _, symbol := range s.book.Symbols() {
		price, err := s.client.LastPrice(ctx, symbol)
		if err != nil {
			slog.Warn("Last price seed failed", slog.String("symbol", symbol), slog.Any("error", err))
			continue
		}
		s.book.SeedLastPrice(symbol, price)
	}
}

// onStaleHeartbeat is the staleness trip: alert the user and cycle the
// order-event connection. The monitor already reset itself to Unset.
func (s *Supervisor) onStaleHeartbeat(gap time.Duration) {
	infra.GlobalMetrics.RecordStaleHeartbeat()
	s.alerts.Notify(domain.NewAlert(domain.AlertWarn,
		fmt.Sprintf("order stream heartbeat stale (%s); reconnecting", gap)))
	s.orderWorker.Reconnect()
}

// handleOrderEvents dispatches one classified batch into the registry and
// the heartbeat monitor, then reconciles the Pending bucket against the
// outstanding submission snapshot.
func (s *Supervisor) handleOrderEvents(events []event.Event) {
	sawOrderEvent := false
	for _, ev := range events {
		infra.GlobalMetrics.RecordEvent()

		switch e := ev.(type) {
		case *event.HeartbeatEvent:
			s.heartbeat.Touch(e.TimestampMs)
		case *event.FillEvent:
			s.registry.OnFilled(recordFrom(&e.OrderEvent))
			sawOrderEvent = true
		case *event.CancelEvent:
			s.registry.OnCancelled(recordFrom(&e.OrderEvent))
			sawOrderEvent = true
		case *event.OrderEvent:
			rec := recordFrom(e)
			switch e.Type {
			case domain.OrderEventBooked, domain.OrderEventInitial:
				s.registry.OnBooked(rec)
			case domain.OrderEventClosed:
				s.registry.OnClosed(rec)
			default:
				slog.Debug("Order event without bucket effect", slog.String("type", e.Type))
			}
			sawOrderEvent = true
		}
		event.Release(ev)
	}

	if sawOrderEvent && s.pending != nil {
		s.registry.ReconcilePending(s.pending())
	}
}

// recordFrom copies the registry-relevant fields out of a pooled event.
func recordFrom(e *event.OrderEvent) domain.OrderRecord {
	return domain.OrderRecord{
		OrderID:        e.OrderID,
		ClientOrderID:  e.ClientOrderID,
		Symbol:         e.Symbol,
		Side:           e.Side,
		Price:          e.Price,
		OriginalAmount: e.OriginalAmount,
		ExecutedAmount: e.ExecutedAmount,
		Status:         e.Type,
		IsCancelled:    e.IsCancelled,
		TimestampMs:    e.TimestampMs,
	}
}
