package operator_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/iban"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/webapi/testutils"
)

type OperatorAPITestSuite struct {
	testutils.APITestSuite
	token string
}

func TestOperatorAPI(t *testing.T) {
	suite.Run(t, new(OperatorAPITestSuite))
}

func (s *OperatorAPITestSuite) SetupTest() {
	s.APITestSuite.SetupTest()
	s.token = s.LoginUser(s.SeedUser(domain.RoleOperator))
}

const newUserBody = `{
	"name": "Giorgi",
	"surname": "Kapanadze",
	"privateNumber": "01024056789",
	"dateOfBirth": "1995-03-14T00:00:00Z",
	"email": "Giorgi@Example.com",
	"password": "s3cret-pass"
}`

func (s *OperatorAPITestSuite) TestProvisioningFlow() {
	resp := s.MakeRequest(http.MethodPost, "/operator/users", newUserBody, s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	user := s.Data(resp)
	s.Equal("giorgi@example.com", user["email"])
	s.Equal("user", user["role"])
	userID := user["id"].(string)

	resp = s.MakeRequest(http.MethodPost, "/operator/accounts",
		fmt.Sprintf(`{"userId":%q,"currency":"USD","balance":"250.5"}`, userID), s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	account := s.Data(resp)
	number := account["iban"].(string)
	s.True(strings.HasPrefix(number, "GE"))
	s.Equal("NB", number[4:6])
	s.NoError(iban.Validate(number))
	s.Equal("USD", account["currency"])

	resp = s.MakeRequest(http.MethodPost, "/operator/cards",
		fmt.Sprintf(`{"accountId":%q,"pin":"4321"}`, account["id"]), s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	card := s.Data(resp)
	cardNumber := card["cardNumber"].(string)
	s.Len(cardNumber, 16)
	s.True(strings.HasPrefix(cardNumber, "41697388"))
	s.Equal("GIORGI KAPANADZE", card["cardholderName"])
	s.NotContains(card, "pin")

	// the new customer can log in and use the card
	resp = s.MakeRequest(http.MethodPost, "/auth/login", `{"email":"giorgi@example.com","password":"s3cret-pass"}`, "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	resp = s.MakeRequest(http.MethodPost, "/atm/authorize",
		fmt.Sprintf(`{"cardNumber":%q,"pin":"4321"}`, cardNumber), "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *OperatorAPITestSuite) TestCreateUser_Rejections() {
	resp := s.MakeRequest(http.MethodPost, "/operator/users", newUserBody, s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/operator/users", newUserBody, s.token)
	s.Equal(fiber.StatusConflict, resp.StatusCode)
	s.Problem(resp)

	minor := strings.NewReplacer(
		"1995-03-14", "2020-01-01",
		"01024056789", "01024000000",
		"Giorgi@Example.com", "kid@example.com",
	).Replace(newUserBody)
	resp = s.MakeRequest(http.MethodPost, "/operator/users", minor, s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	s.Problem(resp)

	resp = s.MakeRequest(http.MethodPost, "/operator/users", `{"name":"x"}`, s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	s.Equal("Validation failed", s.Problem(resp)["title"])
}

func (s *OperatorAPITestSuite) TestCreateAccount_Rejections() {
	owner := s.SeedUser(domain.RoleUser)
	taken := s.SeedAccount(owner.ID, money.GEL, "0")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown user", fmt.Sprintf(`{"userId":%q,"currency":"GEL"}`, uuid.New()), fiber.StatusNotFound},
		{"bad iban", fmt.Sprintf(`{"userId":%q,"currency":"GEL","iban":"GE00NB1234"}`, owner.ID), fiber.StatusBadRequest},
		{"iban taken", fmt.Sprintf(`{"userId":%q,"currency":"GEL","iban":%q}`, owner.ID, strings.ToLower(taken.IBAN)), fiber.StatusConflict},
		{"unsupported currency", fmt.Sprintf(`{"userId":%q,"currency":"JPY"}`, owner.ID), fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.MakeRequest(http.MethodPost, "/operator/accounts", tt.body, s.token)
			s.Equal(tt.status, resp.StatusCode)
			s.Problem(resp)
		})
	}
}

func (s *OperatorAPITestSuite) TestCreateCard_Rejections() {
	resp := s.MakeRequest(http.MethodPost, "/operator/cards",
		fmt.Sprintf(`{"accountId":%q,"pin":"1234"}`, uuid.New()), s.token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)

	owner := s.SeedUser(domain.RoleUser)
	account := s.SeedAccount(owner.ID, money.GEL, "0")
	resp = s.MakeRequest(http.MethodPost, "/operator/cards",
		fmt.Sprintf(`{"accountId":%q,"pin":"12"}`, account.ID), s.token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *OperatorAPITestSuite) TestCustomersAreForbidden() {
	token := s.LoginUser(s.SeedUser(domain.RoleUser))
	resp := s.MakeRequest(http.MethodPost, "/operator/users", newUserBody, token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
}
