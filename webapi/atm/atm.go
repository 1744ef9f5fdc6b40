// Package atm exposes the card-present endpoints. Everything except
// authorization requires the short-lived session token it returns.
package atm

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zezva802/Banking-system/pkg/middleware"
	atmsvc "github.com/zezva802/Banking-system/pkg/service/atm"
	authsvc "github.com/zezva802/Banking-system/pkg/service/auth"
	"github.com/zezva802/Banking-system/webapi/common"
)

func AtmRoutes(app *fiber.App, atmSvc *atmsvc.Service, authSvc *authsvc.Service) {
	protected := []fiber.Handler{
		middleware.JwtProtected(authSvc.Secret()),
		middleware.AtmSession(authSvc),
	}
	group := app.Group("/atm")
	group.Post("/authorize", Authorize(atmSvc))
	group.Get("/balance", append(protected, Balance(atmSvc))...)
	group.Post("/withdraw", append(protected, Withdraw(atmSvc))...)
	group.Put("/pin", append(protected, ChangePIN(atmSvc))...)
}

// Authorize opens an ATM session for a card.
// @Summary Authorize card
// @Tags atm
// @Accept json
// @Produce json
// @Param request body AuthorizeInput true "Card credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /atm/authorize [post]
func Authorize(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AuthorizeInput](c)
		if input == nil {
			return err
		}
		auth, err := atmSvc.Authorize(c.Context(), input.CardNumber, input.PIN)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Authorization failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card authorized", auth)
	}
}

// Balance reports the balance behind the session's card.
// @Summary Balance inquiry
// @Tags atm
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /atm/balance [get]
// @Security Bearer
func Balance(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := middleware.Session(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session context", fiber.StatusUnauthorized)
		}
		balance, err := atmSvc.Balance(c.Context(), *session)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Balance inquiry failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", balance)
	}
}

// Withdraw dispenses cash and debits amount plus commission.
// @Summary Cash withdrawal
// @Tags atm
// @Accept json
// @Produce json
// @Param request body WithdrawInput true "Withdrawal"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /atm/withdraw [post]
// @Security Bearer
func Withdraw(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[WithdrawInput](c)
		if input == nil {
			return err
		}
		session, ok := middleware.Session(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session context", fiber.StatusUnauthorized)
		}
		result, err := atmSvc.Withdraw(c.Context(), *session, input.Amount, input.Currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Withdrawal failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, result.Message, result)
	}
}

// ChangePIN replaces the card's PIN.
// @Summary Change PIN
// @Tags atm
// @Accept json
// @Produce json
// @Param request body ChangePINInput true "New PIN"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /atm/pin [put]
// @Security Bearer
func ChangePIN(atmSvc *atmsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ChangePINInput](c)
		if input == nil {
			return err
		}
		session, ok := middleware.Session(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session context", fiber.StatusUnauthorized)
		}
		msg, err := atmSvc.ChangePIN(c.Context(), *session, input.NewPIN)
		if err != nil {
			return common.ProblemDetailsJSON(c, "PIN change failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, nil)
	}
}
