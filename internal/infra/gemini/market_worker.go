package gemini

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/event"
	"github.com/llenroc/Libra/internal/infra"
)

// MarketWorker streams one symbol's market data feed and forwards trade
// executions to the price book.
type MarketWorker struct {
	wsURL   string
	symbol  string
	onTrade func(domain.TradeEvent)

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	// The feed opens every connection with a full order book snapshot;
	// only messages after it carry trades we care about.
	awaitingSnapshot bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// NewMarketWorker factory
func NewMarketWorker(wsURL, symbol string, onTrade func(domain.TradeEvent)) *MarketWorker {
	return &MarketWorker{
		wsURL:   wsURL,
		symbol:  symbol,
		onTrade: onTrade,
	}
}

func (w *MarketWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *MarketWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Gemini market connection failed",
				slog.String("symbol", w.symbol), slog.Any("error", err), slog.Int("retry", retryCount))
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0 // Infinite retry loop for monitoring
			}
			delay := infra.CalculateBackoff(retryCount)
			time.Sleep(delay)
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *MarketWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.wsURL+MarketDataPath+w.symbol, nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.awaitingSnapshot = true
	w.mu.Unlock()

	infra.GlobalMetrics.IncrementConnections()
	slog.Info("Gemini market feed connected", slog.String("symbol", w.symbol))
	return nil
}

func (w *MarketWorker) readLoop(ctx context.Context) {
	defer infra.GlobalMetrics.DecrementConnections()
	for {
		select {
		case <-ctx.Done():
			w.closeConnection()
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			slog.Warn("Gemini market feed closed",
				slog.String("symbol", w.symbol), slog.Any("error", err))
			infra.GlobalMetrics.RecordReconnect()
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *MarketWorker) handleMessage(msg []byte) {
	w.mu.Lock()
	first := w.awaitingSnapshot
	w.awaitingSnapshot = false
	w.mu.Unlock()
	if first {
		// Book snapshot; discard.
		return
	}

	trades, err := event.ClassifyMarketPayload(w.symbol, msg)
	if err != nil {
		slog.Warn("Unparseable market payload",
			slog.String("symbol", w.symbol), slog.Any("error", err))
		infra.GlobalMetrics.RecordParseError()
		return
	}

	for _, trade := range trades {
		infra.GlobalMetrics.RecordTrade()
		w.onTrade(trade)
	}
}

func (w *MarketWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

func (w *MarketWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
