// Package operator exposes customer provisioning to bank staff.
package operator

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/middleware"
	authsvc "github.com/zezva802/Banking-system/pkg/service/auth"
	operatorsvc "github.com/zezva802/Banking-system/pkg/service/operator"
	"github.com/zezva802/Banking-system/webapi/common"
)

func OperatorRoutes(app *fiber.App, operatorSvc *operatorsvc.Service, authSvc *authsvc.Service) {
	group := app.Group("/operator",
		middleware.JwtProtected(authSvc.Secret()),
		middleware.RequireRole(authSvc, domain.RoleOperator),
	)
	group.Post("/users", CreateUser(operatorSvc))
	group.Post("/accounts", CreateAccount(operatorSvc))
	group.Post("/cards", CreateCard(operatorSvc))
}

// CreateUser registers a customer or another operator.
// @Summary Register user
// @Tags operator
// @Accept json
// @Produce json
// @Param request body dto.UserCreate true "User data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /operator/users [post]
// @Security Bearer
func CreateUser(operatorSvc *operatorsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[dto.UserCreate](c)
		if input == nil {
			return err
		}
		user, err := operatorSvc.CreateUser(c.Context(), *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created user", user)
	}
}

// CreateAccount opens an account, generating an IBAN when none is given.
// @Summary Open account
// @Tags operator
// @Accept json
// @Produce json
// @Param request body dto.AccountCreate true "Account data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /operator/accounts [post]
// @Security Bearer
func CreateAccount(operatorSvc *operatorsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[dto.AccountCreate](c)
		if input == nil {
			return err
		}
		account, err := operatorSvc.CreateAccount(c.Context(), *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created account", account)
	}
}

// CreateCard issues a card for an account.
// @Summary Issue card
// @Tags operator
// @Accept json
// @Produce json
// @Param request body dto.CardCreate true "Card data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /operator/cards [post]
// @Security Bearer
func CreateCard(operatorSvc *operatorsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[dto.CardCreate](c)
		if input == nil {
			return err
		}
		card, err := operatorSvc.CreateCard(c.Context(), *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't issue card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Issued card", card)
	}
}
