package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zezva802/Banking-system/pkg/currency"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StaticConverter implements currency.Converter from a fixed rate table. The
// inverse of a configured pair is derived when only one direction is set.
// asOf is ignored.
type StaticConverter struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	calls int
}

var _ currency.Converter = (*StaticConverter)(nil)

// NewStaticConverter creates a converter with no rates; same-currency
// conversions always succeed.
func NewStaticConverter() *StaticConverter {
	return &StaticConverter{rates: make(map[string]decimal.Decimal)}
}

// WithRate sets the rate for from -> to.
func (c *StaticConverter) WithRate(from, to money.Code, rate string) *StaticConverter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[string(from)+":"+string(to)] = decimal.RequireFromString(rate)
	return c
}

// Calls returns how many cross-currency lookups were made.
func (c *StaticConverter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *StaticConverter) Rate(_ context.Context, from, to money.Code, _ *time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if r, ok := c.rates[string(from)+":"+string(to)]; ok {
		return r, nil
	}
	if r, ok := c.rates[string(to)+":"+string(from)]; ok {
		return decimal.NewFromInt(1).DivRound(r, 10), nil
	}
	return decimal.Zero, domain.NewError(domain.ErrServiceUnavailable,
		"Unable to fetch exchange rates. Please try again later.")
}

func (c *StaticConverter) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	from, to money.Code,
	asOf *time.Time,
) (decimal.Decimal, error) {
	rate, err := c.Rate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(amount.Mul(rate)), nil
}

// MakeRequest runs a request against app without a network listener.
func MakeRequest(t *testing.T, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// DecodeBody unmarshals the response body into a generic map.
func DecodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// StartPostgres starts a disposable Postgres container and returns its DSN.
// The container is terminated when the test ends.
func StartPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pg); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get Postgres DSN: %v", err)
	}
	return dsn
}

// MustDecimal parses s or panics.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal %q: %v", s, err))
	}
	return d
}
