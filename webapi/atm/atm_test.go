package atm_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/webapi/testutils"
)

type AtmAPITestSuite struct {
	testutils.APITestSuite
	account *domain.Account
	card    *domain.Card
}

func TestAtmAPI(t *testing.T) {
	suite.Run(t, new(AtmAPITestSuite))
}

func (s *AtmAPITestSuite) SetupTest() {
	s.APITestSuite.SetupTest()
	u := s.SeedUser(domain.RoleUser)
	s.account = s.SeedAccount(u.ID, money.GEL, "20000")
	s.card = s.SeedCard(s.account.ID, "1234")
}

func (s *AtmAPITestSuite) balance() string {
	a, ok := s.Store.Account(s.account.ID)
	s.Require().True(ok)
	return a.Balance.StringFixed(2)
}

func (s *AtmAPITestSuite) TestSessionFlow() {
	session := s.AuthorizeCard(s.card, "1234")

	resp := s.MakeRequest(http.MethodGet, "/atm/balance", "", session)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.Data(resp)
	s.Equal("GEL", data["currency"])
	s.Equal(s.account.IBAN, data["accountIban"])

	resp = s.MakeRequest(http.MethodPost, "/atm/withdraw", `{"amount":"100","currency":"GEL"}`, session)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	body := s.Decode(resp)
	s.Equal("Withdrawal successful", body["message"])
	s.Equal("19898.00", s.balance())

	resp = s.MakeRequest(http.MethodPut, "/atm/pin", `{"newPin":"9876"}`, session)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.Equal("PIN changed successfully", s.Decode(resp)["message"])

	resp = s.MakeRequest(http.MethodPost, "/atm/authorize",
		fmt.Sprintf(`{"cardNumber":%q,"pin":"1234"}`, s.card.CardNumber), "")
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	s.AuthorizeCard(s.card, "9876")

	types := make([]domain.AtmOperationType, 0)
	for _, op := range s.Store.AtmOperations() {
		types = append(types, op.Type)
	}
	s.Equal([]domain.AtmOperationType{
		domain.AtmOperationAuthorization,
		domain.AtmOperationBalanceCheck,
		domain.AtmOperationWithdraw,
		domain.AtmOperationPINChange,
		domain.AtmOperationAuthorization,
	}, types)
}

func (s *AtmAPITestSuite) TestDailyLimitProblem() {
	session := s.AuthorizeCard(s.card, "1234")

	resp := s.MakeRequest(http.MethodPost, "/atm/withdraw", `{"amount":"9900","currency":"GEL"}`, session)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/atm/withdraw", `{"amount":"200","currency":"GEL"}`, session)
	s.Require().Equal(fiber.StatusBadRequest, resp.StatusCode)
	problem := s.Problem(resp)
	s.Contains(problem["detail"], "Remaining limit: 100.00 GEL")
	errs, ok := problem["errors"].(map[string]any)
	s.Require().True(ok)
	s.Equal("100.00", errs["remaining"])
	s.Equal("9900.00", errs["alreadyWithdrawn"])

	s.Equal("9902.00", s.balance())
}

func (s *AtmAPITestSuite) TestSessionRequired() {
	u := s.SeedUser(domain.RoleUser)
	login := s.LoginUser(u)

	resp := s.MakeRequest(http.MethodGet, "/atm/balance", "", "")
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	resp = s.MakeRequest(http.MethodGet, "/atm/balance", "", login)
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
	s.Empty(s.Store.AtmOperations())
}

func (s *AtmAPITestSuite) TestAuthorizeRefusals() {
	expired := s.SeedCard(s.account.ID, "1234")
	expired.ExpirationYear = time.Now().Year() - 1
	s.Store.SeedCard(expired)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong pin", fmt.Sprintf(`{"cardNumber":%q,"pin":"0000"}`, s.card.CardNumber), fiber.StatusUnauthorized},
		{"expired card", fmt.Sprintf(`{"cardNumber":%q,"pin":"1234"}`, expired.CardNumber), fiber.StatusForbidden},
		{"unknown card", `{"cardNumber":"4169738899999999","pin":"1234"}`, fiber.StatusNotFound},
		{"short number", `{"cardNumber":"4169","pin":"1234"}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.MakeRequest(http.MethodPost, "/atm/authorize", tt.body, "")
			s.Equal(tt.status, resp.StatusCode)
			s.Problem(resp)
		})
	}
	s.Empty(s.Store.AtmOperations())
}

func (s *AtmAPITestSuite) TestChangePIN_RejectsBadFormat() {
	session := s.AuthorizeCard(s.card, "1234")
	resp := s.MakeRequest(http.MethodPut, "/atm/pin", `{"newPin":"12a4"}`, session)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	s.Contains(s.Problem(resp)["detail"], "4 digits")
}
