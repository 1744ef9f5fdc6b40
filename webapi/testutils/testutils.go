// Package testutils provides an API test suite that drives the full fiber
// app against the in-memory unit of work.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zezva802/Banking-system/pkg/app"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/iban"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/testutils"
	"github.com/zezva802/Banking-system/pkg/utils"
	"github.com/zezva802/Banking-system/webapi"
	"golang.org/x/crypto/bcrypt"
)

// Password is the password of every seeded user.
const Password = "password123"

var seq atomic.Int64

// APITestSuite builds a fresh store and app for every test.
type APITestSuite struct {
	suite.Suite
	Store     *testutils.Store
	Converter *testutils.StaticConverter
	Cfg       *config.App
	App       *app.App
	Fiber     *fiber.App
}

// TestConfig returns a config with cheap hashing and no rate limit.
func TestConfig() *config.App {
	return &config.App{
		Env: "test",
		Auth: &config.Auth{Jwt: &config.Jwt{
			Secret:           "api-test-secret",
			Expiry:           time.Hour,
			OperatorExpiry:   8 * time.Hour,
			AtmSessionExpiry: 3 * time.Minute,
		}},
		RateLimit: &config.RateLimit{},
		Ledger: &config.Ledger{
			ReferenceCurrency:      "GEL",
			DailyWithdrawalLimit:   decimal.NewFromInt(10000),
			TransferCommissionRate: decimal.RequireFromString("0.01"),
			AtmCommissionRate:      decimal.RequireFromString("0.02"),
		},
		Provisioning: &config.Provisioning{
			MaxGenerationAttempts: 10,
			PasswordBcryptCost:    bcrypt.MinCost,
			PinBcryptCost:         bcrypt.MinCost,
		},
	}
}

func (s *APITestSuite) SetupTest() {
	if s.Cfg == nil {
		s.Cfg = TestConfig()
	}
	s.Store = testutils.NewStore()
	s.Converter = testutils.NewStaticConverter().
		WithRate(money.USD, money.GEL, "2.7").
		WithRate(money.EUR, money.GEL, "3")
	s.App = app.New(&app.Deps{
		Uow:       s.Store.UoW(),
		Converter: s.Converter,
		Logger:    testutils.DiscardLogger(),
	}, s.Cfg)
	s.Fiber = webapi.SetupApp(s.App)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *APITestSuite) MakeRequest(method, path, body, token string) *http.Response {
	return testutils.MakeRequest(s.T(), s.Fiber, method, path, body, token)
}

// Decode reads the body as a generic JSON object.
func (s *APITestSuite) Decode(resp *http.Response) map[string]any {
	return testutils.DecodeBody(s.T(), resp)
}

// Data returns the data member of a success envelope.
func (s *APITestSuite) Data(resp *http.Response) map[string]any {
	body := s.Decode(resp)
	data, ok := body["data"].(map[string]any)
	s.Require().True(ok, "response has no data object: %v", body)
	return data
}

// SeedUser stores a user with Password and a unique email.
func (s *APITestSuite) SeedUser(role domain.Role) *domain.User {
	n := seq.Add(1)
	hash, err := utils.HashPassword(Password, bcrypt.MinCost)
	s.Require().NoError(err)
	u := &domain.User{
		ID:            uuid.New(),
		Name:          "Test",
		Surname:       fmt.Sprintf("User%d", n),
		PrivateNumber: fmt.Sprintf("%011d", n),
		DateOfBirth:   time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		Email:         fmt.Sprintf("user%d@example.com", n),
		PasswordHash:  hash,
		Role:          role,
	}
	s.Store.SeedUser(u)
	return u
}

// LoginUser logs in through the HTTP endpoint and returns the access token.
func (s *APITestSuite) LoginUser(u *domain.User) string {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, u.Email, Password)
	resp := s.MakeRequest(http.MethodPost, "/auth/login", body, "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	token, _ := s.Data(resp)["accessToken"].(string)
	s.Require().NotEmpty(token)
	return token
}

// SeedAccount stores an account with a generated IBAN.
func (s *APITestSuite) SeedAccount(userID uuid.UUID, cur money.Code, balance string) *domain.Account {
	n := seq.Add(1)
	number, err := iban.Build(fmt.Sprintf("%016d", n))
	s.Require().NoError(err)
	a := &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		IBAN:     number,
		Balance:  decimal.RequireFromString(balance),
		Currency: cur,
	}
	s.Store.SeedAccount(a)
	return a
}

// SeedCard stores a card valid for three more years.
func (s *APITestSuite) SeedCard(accountID uuid.UUID, pin string) *domain.Card {
	n := seq.Add(1)
	hash, err := utils.HashPassword(pin, bcrypt.MinCost)
	s.Require().NoError(err)
	now := time.Now()
	c := &domain.Card{
		ID:              uuid.New(),
		AccountID:       accountID,
		CardNumber:      fmt.Sprintf("41697388%08d", n),
		CardholderName:  "TEST HOLDER",
		ExpirationMonth: int(now.Month()),
		ExpirationYear:  now.Year() + 3,
		PINHash:         hash,
	}
	s.Store.SeedCard(c)
	return c
}

// AuthorizeCard opens an ATM session through the HTTP endpoint.
func (s *APITestSuite) AuthorizeCard(card *domain.Card, pin string) string {
	body := fmt.Sprintf(`{"cardNumber":%q,"pin":%q}`, card.CardNumber, pin)
	resp := s.MakeRequest(http.MethodPost, "/atm/authorize", body, "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	token, _ := s.Data(resp)["sessionToken"].(string)
	s.Require().NotEmpty(token)
	return token
}

// Problem decodes a problem details body.
func (s *APITestSuite) Problem(resp *http.Response) map[string]any {
	s.Equal("application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var out map[string]any
	defer resp.Body.Close() //nolint: errcheck
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}
