package report

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/middleware"
	authsvc "github.com/zezva802/Banking-system/pkg/service/auth"
	reportsvc "github.com/zezva802/Banking-system/pkg/service/report"
	"github.com/zezva802/Banking-system/webapi/common"
)

func ReportRoutes(app *fiber.App, reportSvc *reportsvc.Service, authSvc *authsvc.Service) {
	group := app.Group("/reports",
		middleware.JwtProtected(authSvc.Secret()),
		middleware.RequireRole(authSvc, domain.RoleOperator),
	)
	group.Get("/users", UserStatistics(reportSvc))
	group.Get("/transactions", TransactionStatistics(reportSvc))
}

// UserStatistics counts registrations.
// @Summary Registration statistics
// @Tags reports
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Router /reports/users [get]
// @Security Bearer
func UserStatistics(reportSvc *reportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := reportSvc.UserStatistics(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build user statistics", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User statistics", stats)
	}
}

// TransactionStatistics summarizes transfers and ATM withdrawals.
// @Summary Transaction statistics
// @Description Commission figures are converted at each record's historical rate.
// @Tags reports
// @Produce json
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /reports/transactions [get]
// @Security Bearer
func TransactionStatistics(reportSvc *reportsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := reportSvc.TransactionStatistics(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build transaction statistics", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction statistics", stats)
	}
}
