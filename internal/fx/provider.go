package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Provider returns the sell-price quote of the foreign currency for one day.
// ok is false when the source has no quote for that day (weekends, holidays),
// which is an expected outcome and not an error.
type Provider interface {
	SellRate(ctx context.Context, day Date) (rate decimal.Decimal, ok bool, err error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, day Date) (decimal.Decimal, bool, error)

func (f ProviderFunc) SellRate(ctx context.Context, day Date) (decimal.Decimal, bool, error) {
	return f(ctx, day)
}

// HTTPProvider queries a daily exchange-rate endpoint that answers
// GET {baseURL}?fecha=YYYY-MM-DD with {"compra": n, "venta": n, "fecha": "..."}.
type HTTPProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPProvider(baseURL, token string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type quoteResponse struct {
	Buy  *float64 `json:"compra"`
	Sell *float64 `json:"venta"`
	Date string   `json:"fecha"`
}

func (p *HTTPProvider) SellRate(ctx context.Context, day Date) (decimal.Decimal, bool, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse quote url: %w", err)
	}
	q := u.Query()
	q.Set("fecha", day.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("create quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("fetch quote for %s: %w", day, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return decimal.Zero, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, false, fmt.Errorf("fetch quote for %s: unexpected status %d", day, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("read quote response: %w", err)
	}
	if len(body) == 0 {
		return decimal.Zero, false, nil
	}

	var qr quoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return decimal.Zero, false, fmt.Errorf("unmarshal quote response: %w", err)
	}
	if qr.Sell == nil || *qr.Sell <= 0 {
		return decimal.Zero, false, nil
	}

	return decimal.NewFromFloat(*qr.Sell), true, nil
}
