package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/middleware"
	authsvc "github.com/zezva802/Banking-system/pkg/service/auth"
	transfersvc "github.com/zezva802/Banking-system/pkg/service/transfer"
	usersvc "github.com/zezva802/Banking-system/pkg/service/user"
	"github.com/zezva802/Banking-system/webapi/common"
)

func UserRoutes(
	app *fiber.App,
	userSvc *usersvc.Service,
	transferSvc *transfersvc.Service,
	authSvc *authsvc.Service,
) {
	group := app.Group("/user",
		middleware.JwtProtected(authSvc.Secret()),
		middleware.RequireRole(authSvc, domain.RoleUser),
	)
	group.Get("/accounts", ListAccounts(userSvc))
	group.Get("/cards", ListCards(userSvc))
	group.Post("/transfer/own", TransferOwn(transferSvc))
	group.Post("/transfer/other", TransferOther(transferSvc))
}

// ListAccounts returns the caller's accounts, newest first.
// @Summary List my accounts
// @Tags user
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /user/accounts [get]
// @Security Bearer
func ListAccounts(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.Principal(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		accounts, err := userSvc.Accounts(c.Context(), p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// ListCards returns the caller's cards, newest first. PINs are never included.
// @Summary List my cards
// @Tags user
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /user/cards [get]
// @Security Bearer
func ListCards(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.Principal(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		cards, err := userSvc.Cards(c.Context(), p.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list cards", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Cards fetched", cards)
	}
}

// TransferOwn moves money between two of the caller's accounts.
// @Summary Transfer between own accounts
// @Description Converts through the account currencies. No commission is charged.
// @Tags user
// @Accept json
// @Produce json
// @Param request body TransferOwnInput true "Transfer details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /user/transfer/own [post]
// @Security Bearer
func TransferOwn(transferSvc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferOwnInput](c)
		if input == nil {
			return err
		}
		p, ok := middleware.Principal(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		tx, err := transferSvc.TransferOwn(c.Context(), dto.TransferOwnCommand{
			RequesterID:   p.UserID,
			FromAccountID: input.FromAccountID,
			ToAccountID:   input.ToAccountID,
			Amount:        input.Amount,
			Currency:      input.Currency,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer completed", tx)
	}
}

// TransferOther sends money to an account owned by another customer.
// @Summary Transfer to another customer
// @Description Charges the configured commission on top of the amount.
// @Tags user
// @Accept json
// @Produce json
// @Param request body TransferOtherInput true "Transfer details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /user/transfer/other [post]
// @Security Bearer
func TransferOther(transferSvc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferOtherInput](c)
		if input == nil {
			return err
		}
		p, ok := middleware.Principal(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
		}
		tx, err := transferSvc.TransferOther(c.Context(), dto.TransferOtherCommand{
			RequesterID:   p.UserID,
			FromAccountID: input.FromAccountID,
			ToIBAN:        input.ToIBAN,
			Amount:        input.Amount,
			Currency:      input.Currency,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer completed", tx)
	}
}
