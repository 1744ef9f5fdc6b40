// Package exchangerateapi is a client for the v6 API at exchangerate-api.com.
package exchangerateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/provider"
)

const providerName = "exchangerate-api"

// Client implements provider.RateSource.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ provider.RateSource = (*Client)(nil)

// pairResponse is the body of GET /{key}/pair/{from}/{to}.
type pairResponse struct {
	Result         string           `json:"result"`
	ErrorType      string           `json:"error-type,omitempty"`
	BaseCode       string           `json:"base_code"`
	TargetCode     string           `json:"target_code"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
}

// historyResponse is the body of GET /{key}/history/{base}/{y}/{m}/{d}.
type historyResponse struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type,omitempty"`
	BaseCode        string                     `json:"base_code"`
	Year            int                        `json:"year"`
	Month           int                        `json:"month"`
	Day             int                        `json:"day"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// New creates a client from config. A nil httpClient gets one with the
// configured timeout.
func New(cfg *config.ExchangeRateApi, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     cfg.ApiKey,
		baseURL:    strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: httpClient,
		logger:     logger.With("provider", providerName),
	}
}

func (c *Client) Name() string { return providerName }

// PairRate implements provider.RateSource.
func (c *Client) PairRate(ctx context.Context, from, to money.Code) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s/pair/%s/%s", c.baseURL, c.apiKey, from, to)
	subject := fmt.Sprintf("%s to %s on current", from, to)

	var body pairResponse
	if err := c.get(ctx, url, subject, &body); err != nil {
		return decimal.Zero, err
	}
	if body.Result != "success" {
		c.logger.Error("API error", "error_type", body.ErrorType, "pair", subject)
		return decimal.Zero, unavailable()
	}
	if body.ConversionRate == nil || !body.ConversionRate.IsPositive() {
		c.logger.Error("Exchange rate missing in API response", "pair", subject)
		return decimal.Zero, unavailable()
	}

	c.logger.Info("Fetched current rate", "from", from, "to", to, "rate", body.ConversionRate.String())
	return *body.ConversionRate, nil
}

// DailyRates implements provider.RateSource.
func (c *Client) DailyRates(ctx context.Context, base money.Code, day time.Time) (map[string]decimal.Decimal, error) {
	day = day.UTC()
	url := fmt.Sprintf("%s/%s/history/%s/%d/%d/%d",
		c.baseURL, c.apiKey, base, day.Year(), int(day.Month()), day.Day())
	subject := fmt.Sprintf("%s on %s", base, day.Format(time.DateOnly))

	var body historyResponse
	if err := c.get(ctx, url, subject, &body); err != nil {
		return nil, err
	}
	if body.Result != "success" {
		c.logger.Error("API error", "error_type", body.ErrorType, "base", base, "date", day.Format(time.DateOnly))
		return nil, unavailable()
	}
	if len(body.ConversionRates) == 0 {
		c.logger.Error("Historical rates missing in API response", "base", base, "date", day.Format(time.DateOnly))
		return nil, unavailable()
	}

	c.logger.Info("Fetched historical rates", "base", base, "date", day.Format(time.DateOnly), "count", len(body.ConversionRates))
	return body.ConversionRates, nil
}

func (c *Client) get(ctx context.Context, url, subject string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch exchange rate", "subject", subject, "error", err)
		return unavailable()
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("Exchange rate data not available", "subject", subject)
		return domain.NewError(domain.ErrNotFound, "Exchange rate data not available for %s.", subject)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("API returned unexpected status", "status", resp.StatusCode, "subject", subject, "body", string(snippet))
		return unavailable()
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode API response", "subject", subject, "error", err)
		return unavailable()
	}
	return nil
}

func unavailable() error {
	return domain.NewError(domain.ErrServiceUnavailable, "Unable to fetch exchange rates. Please try again later.")
}
