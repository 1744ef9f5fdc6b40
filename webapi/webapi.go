// Package webapi provides the HTTP surface of the ledger. It is organized
// into sub-packages per audience:
// - auth: login
// - user: customer self-service and transfers
// - atm: card-present session endpoints
// - operator: customer provisioning
// - report: operator statistics
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/zezva802/Banking-system/pkg/app"
	atmweb "github.com/zezva802/Banking-system/webapi/atm"
	authweb "github.com/zezva802/Banking-system/webapi/auth"
	"github.com/zezva802/Banking-system/webapi/common"
	operatorweb "github.com/zezva802/Banking-system/webapi/operator"
	reportweb "github.com/zezva802/Banking-system/webapi/report"
	userweb "github.com/zezva802/Banking-system/webapi/user"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "banking-ledger",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "", err)
		},
	})

	fiberApp.Use(requestid.New())
	fiberApp.Use(recover.New())
	if a.Config.RateLimit != nil && a.Config.RateLimit.MaxRequests > 0 {
		// Uses X-Forwarded-For header when behind a proxy
		// Falls back to X-Real-IP or direct IP if needed
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          a.Config.RateLimit.MaxRequests,
			Expiration:   a.Config.RateLimit.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", nil)
	})

	authweb.AuthRoutes(fiberApp, a.AuthService)
	userweb.UserRoutes(fiberApp, a.UserService, a.TransferService, a.AuthService)
	atmweb.AtmRoutes(fiberApp, a.AtmService, a.AuthService)
	operatorweb.OperatorRoutes(fiberApp, a.OperatorService, a.AuthService)
	reportweb.ReportRoutes(fiberApp, a.ReportService, a.AuthService)

	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// first hop is the client
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
