package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/infra"
)

// Client is the Gemini REST API client. It serves as the trade-history
// source for VWAP backfill, the balance source for valuation, and the
// last-price seed at startup.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

// NewClient creates a new Gemini API client from configuration.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.API.Gemini.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: NewSigner(cfg.API.Gemini.APIKey, cfg.API.Gemini.APISecret),
		logger: slog.Default().With("module", "gemini_client"),
	}
}

// Signer exposes the request signer so the order-event worker can attach
// authentication headers before upgrading its connection.
func (c *Client) Signer() *Signer {
	return c.signer
}

// TradesSince fetches one page of historical trades for symbol, most
// recent first, starting at the since cursor (epoch seconds). A non-2xx
// response is a hard error: backfill must not silently under-seed.
func (c *Client) TradesSince(ctx context.Context, symbol string, since int64, limit int) ([]domain.TradeEvent, error) {
	url := fmt.Sprintf("%s/v1/trades/%s?limit_trades=%d&since=%d", c.baseURL, symbol, limit, since)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var entries []tradeHistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, domain.NewFatalNetworkError("decode trades", err)
	}

	trades := make([]domain.TradeEvent, len(entries))
	for i, e := range entries {
		ts := e.TimestampMs
		if ts == 0 {
			ts = e.Timestamp * 1000
		}
		trades[i] = domain.TradeEvent{
			Symbol:      symbol,
			Price:       e.Price,
			Amount:      e.Amount,
			TimestampMs: ts,
		}
	}
	return trades, nil
}

// GetBalances fetches account balances over the signed balances endpoint.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	const path = "/v1/balances"

	headers, err := c.signer.GenerateHeaders(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("fetch balances", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read balances", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status=%d body=%s", domain.ErrBadResponse, resp.StatusCode, string(body))
	}

	var entries []balanceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, domain.NewNetworkError("decode balances", err)
	}

	balances := make([]domain.Balance, len(entries))
	for i, e := range entries {
		balances[i] = domain.Balance{Currency: e.Currency, Amount: e.Amount}
	}
	return balances, nil
}

// LastPrice fetches the most recent traded price for symbol from the
// public ticker, used to seed the price book before streams open.
func (c *Client) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	body, err := c.get(ctx, c.baseURL+"/v1/pubticker/"+symbol)
	if err != nil {
		return decimal.Zero, err
	}

	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return decimal.Zero, domain.NewNetworkError("decode ticker", err)
	}
	return ticker.Last, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("fetch", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Gemini API returned non-2xx", slog.String("url", url), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status=%d", domain.ErrBadResponse, resp.StatusCode)
	}
	return body, nil
}
