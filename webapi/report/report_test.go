package report_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/webapi/testutils"
)

type ReportAPITestSuite struct {
	testutils.APITestSuite
	token string
}

func TestReportAPI(t *testing.T) {
	suite.Run(t, new(ReportAPITestSuite))
}

func (s *ReportAPITestSuite) SetupTest() {
	s.APITestSuite.SetupTest()
	s.token = s.LoginUser(s.SeedUser(domain.RoleOperator))
}

func (s *ReportAPITestSuite) TestUserStatistics() {
	s.SeedUser(domain.RoleUser)
	s.SeedUser(domain.RoleUser)

	resp := s.MakeRequest(http.MethodGet, "/reports/users", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.Data(resp)
	s.EqualValues(3, data["registeredThisYear"])
	s.EqualValues(3, data["registeredLast30Days"])
	s.EqualValues(0, data["registeredLastYear"])
}

func (s *ReportAPITestSuite) TestTransactionStatistics() {
	alice := s.SeedUser(domain.RoleUser)
	bob := s.SeedUser(domain.RoleUser)
	from := s.SeedAccount(alice.ID, money.GEL, "1000")
	to := s.SeedAccount(bob.ID, money.GEL, "0")

	body := fmt.Sprintf(`{"fromAccountId":%q,"toIban":%q,"amount":"100","currency":"GEL"}`, from.ID, to.IBAN)
	resp := s.MakeRequest(http.MethodPost, "/user/transfer/other", body, s.LoginUser(alice))
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	resp = s.MakeRequest(http.MethodGet, "/reports/transactions", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.Data(resp)
	s.EqualValues(1, data["transactionsLastMonth"])
	s.EqualValues(1, data["transactionsLastYear"])

	income, ok := data["commissionIncome"].(map[string]any)
	s.Require().True(ok)
	gel, err := decimal.NewFromString(income["GEL"].(string))
	s.Require().NoError(err)
	s.True(gel.Equal(decimal.NewFromInt(1)), gel.String())

	days, ok := data["dailyTransactionsLastMonth"].([]any)
	s.Require().True(ok)
	s.GreaterOrEqual(len(days), 29)
}

func (s *ReportAPITestSuite) TestCustomersAreForbidden() {
	token := s.LoginUser(s.SeedUser(domain.RoleUser))
	resp := s.MakeRequest(http.MethodGet, "/reports/transactions", "", token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
}
