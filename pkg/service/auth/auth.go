package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/mapper"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/utils"
)

// Claim names carried by the tokens this package issues.
const (
	ClaimSubject   = "sub"
	ClaimEmail     = "email"
	ClaimRole      = "role"
	ClaimCardID    = "card_id"
	ClaimAccountID = "account_id"
	ClaimType      = "type"

	// AtmSessionType marks a token as an ATM session rather than a user login.
	AtmSessionType = "atm_session"
)

const (
	defaultExpiry           = time.Hour
	defaultOperatorExpiry   = 8 * time.Hour
	defaultAtmSessionExpiry = 3 * time.Minute
)

// ErrInvalidToken is returned for tokens that fail to parse or carry the
// wrong claims.
var ErrInvalidToken = domain.NewError(domain.ErrUnauthorized, "Invalid or expired token")

// Principal is the authenticated user behind a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

// Service authenticates users and issues or parses the HS256 tokens used by
// the user, operator and ATM surfaces.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Jwt{}
	}
	return &Service{uow: uow, cfg: cfg, logger: logger.With("service", "auth"), now: time.Now}
}

// Secret returns the signing key, for the transport layer's JWT middleware.
func (s *Service) Secret() []byte {
	return []byte(s.cfg.Secret)
}

// Login checks the credentials and returns a signed access token. Every
// failure, including an unknown or soft-deleted user, yields the same
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*dto.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.With("context", "Login", "email", email)
	log.Debug("Login called")

	u, err := s.uow.UserRepository().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Error("Login failed: user lookup", "error", err)
		return nil, err
	}
	if u == nil {
		// Always check password hash to avoid timing attacks
		_ = utils.CheckPasswordHash(password, utils.DummyHash)
		log.Warn("Login failed: unknown email")
		return nil, domain.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) || u.DeletedAt != nil {
		log.Warn("Login failed: bad credentials", "userID", u.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID, "role", u.Role)
	return &dto.LoginResult{AccessToken: token, User: *mapper.MapUserToRead(u)}, nil
}

// GenerateToken signs a user token whose lifetime depends on the role.
func (s *Service) GenerateToken(u *domain.User) (string, error) {
	expiry := s.cfg.Expiry
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	if u.Role == domain.RoleOperator {
		expiry = s.cfg.OperatorExpiry
		if expiry <= 0 {
			expiry = defaultOperatorExpiry
		}
	}

	now := s.now()
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims[ClaimSubject] = u.ID.String()
	claims[ClaimEmail] = u.Email
	claims[ClaimRole] = string(u.Role)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(expiry).Unix()
	signed, err := token.SignedString(s.Secret())
	if err != nil {
		s.logger.Error("GenerateToken failed", "userID", u.ID, "error", err)
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// PrincipalFromToken extracts the user behind an already verified token.
func (s *Service) PrincipalFromToken(token *jwt.Token) (*Principal, error) {
	if token == nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if t, _ := claims[ClaimType].(string); t != "" {
		return nil, ErrInvalidToken
	}
	sub, _ := claims[ClaimSubject].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role, _ := claims[ClaimRole].(string)
	email, _ := claims[ClaimEmail].(string)
	return &Principal{UserID: userID, Email: email, Role: domain.Role(role)}, nil
}

// IssueAtmSession signs a short-lived token bound to one card and account.
// It returns the token together with its lifetime.
func (s *Service) IssueAtmSession(cardID, accountID uuid.UUID) (string, time.Duration, error) {
	ttl := s.cfg.AtmSessionExpiry
	if ttl <= 0 {
		ttl = defaultAtmSessionExpiry
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimCardID:    cardID.String(),
		ClaimAccountID: accountID.String(),
		ClaimType:      AtmSessionType,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.Secret())
	if err != nil {
		return "", 0, fmt.Errorf("sign atm session: %w", err)
	}
	return signed, ttl, nil
}

// ParseAtmSession verifies a raw ATM session token.
func (s *Service) ParseAtmSession(raw string) (*dto.AtmSession, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return s.Secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.AtmSessionFromToken(token)
}

// AtmSessionFromToken extracts the session from an already verified token.
func (s *Service) AtmSessionFromToken(token *jwt.Token) (*dto.AtmSession, error) {
	if token == nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if t, _ := claims[ClaimType].(string); t != AtmSessionType {
		return nil, ErrInvalidToken
	}
	cardRaw, _ := claims[ClaimCardID].(string)
	accountRaw, _ := claims[ClaimAccountID].(string)
	cardID, err := uuid.Parse(cardRaw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountRaw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &dto.AtmSession{CardID: cardID, AccountID: accountID}, nil
}
