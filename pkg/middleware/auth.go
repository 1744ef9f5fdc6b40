package middleware

import (
	"errors"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	authsvc "github.com/zezva802/Banking-system/pkg/service/auth"
	"github.com/zezva802/Banking-system/webapi/common"
)

const (
	tokenKey     = "user"
	principalKey = "principal"
	sessionKey   = "atm_session"
)

// JwtProtected verifies the bearer token and stores it under Locals("user").
func JwtProtected(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey:   tokenKey,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error()) {
		return common.ProblemDetailsJSON(c, "Bad Request", err, "Missing or malformed JWT", fiber.StatusBadRequest)
	}
	return common.ProblemDetailsJSON(c, "Unauthorized", err, "Invalid or expired JWT", fiber.StatusUnauthorized)
}

// RequireRole admits a user token whose role is one of roles. It must run
// after JwtProtected.
func RequireRole(authSvc *authsvc.Service, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals(tokenKey).(*jwt.Token)
		p, err := authSvc.PrincipalFromToken(token)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		for _, r := range roles {
			if p.Role == r {
				c.Locals(principalKey, p)
				return c.Next()
			}
		}
		return common.ProblemDetailsJSON(c, "Forbidden", domain.ErrForbidden, "Insufficient role")
	}
}

// AtmSession admits only ATM session tokens. It must run after JwtProtected.
func AtmSession(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals(tokenKey).(*jwt.Token)
		session, err := authSvc.AtmSessionFromToken(token)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// Principal returns the user admitted by RequireRole.
func Principal(c *fiber.Ctx) (*authsvc.Principal, bool) {
	p, ok := c.Locals(principalKey).(*authsvc.Principal)
	return p, ok
}

// Session returns the card session admitted by AtmSession.
func Session(c *fiber.Ctx) (*dto.AtmSession, bool) {
	s, ok := c.Locals(sessionKey).(*dto.AtmSession)
	return s, ok
}
