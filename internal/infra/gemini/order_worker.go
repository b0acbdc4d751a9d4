package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/event"
	"github.com/llenroc/Libra/internal/infra"
)

// OrderWorker streams the authenticated order-event feed: bookings,
// fills, cancellations and stream heartbeats for the account's orders.
type OrderWorker struct {
	wsURL       string
	signer      *Signer
	onEvents    func([]event.Event)
	onConnected func()
	alerts      domain.AlertSink

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewOrderWorker factory
func NewOrderWorker(wsURL string, signer *Signer, onEvents func([]event.Event), onConnected func(), alerts domain.AlertSink) *OrderWorker {
	return &OrderWorker{
		wsURL:       wsURL,
		signer:      signer,
		onEvents:    onEvents,
		onConnected: onConnected,
		alerts:      alerts,
	}
}

func (w *OrderWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *OrderWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			var authErr *domain.AuthError
			if errors.As(err, &authErr) {
				// Bad credentials never recover on retry; surface and stop.
				slog.Error("Gemini order stream authentication failed", slog.Any("error", err))
				w.alerts.Notify(domain.NewAlert(domain.AlertError,
					fmt.Sprintf("order stream not established: %v", err)))
				return
			}
			slog.Warn("Gemini order stream connection failed",
				slog.Any("error", err), slog.Int("retry", retryCount))
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

func (w *OrderWorker) connect(ctx context.Context) error {
	headers, err := w.signer.GenerateHeaders(OrderEventsPath)
	if err != nil {
		return err
	}
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.wsURL+OrderEventsPath, header)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	infra.GlobalMetrics.IncrementConnections()
	slog.Info("Gemini order stream connected")
	if w.onConnected != nil {
		w.onConnected()
	}
	return nil
}

func (w *OrderWorker) readLoop(ctx context.Context) {
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
			slog.Warn("Gemini order stream closed",
				slog.Any("error", fmt.Errorf("%w: %v", domain.ErrStreamClosed, err)))
			infra.GlobalMetrics.RecordReconnect()
			w.closeConnection()
			return
		}
		w.handleMessage(msg)
	}
}

func (w *OrderWorker) handleMessage(msg []byte) {
	events := event.ClassifyOrderPayload(msg)
	if len(events) == 0 {
		return
	}
	w.onEvents(events)
}

// Reconnect drops the current connection. The connection loop notices the
// read failure and dials again with fresh credentials; callers use this
// when the stream has gone quiet but the socket still looks open.
func (w *OrderWorker) Reconnect() {
	slog.Warn("Gemini order stream reconnect requested")
	w.closeConnection()
}

func (w *OrderWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

func (w *OrderWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
