// Package operator implements bank-staff provisioning: registering customers,
// opening accounts and issuing cards.
package operator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/iban"
	"github.com/zezva802/Banking-system/pkg/mapper"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/repository"
	"github.com/zezva802/Banking-system/pkg/utils"
)

// CardPrefix is the issuer prefix of every card number.
const CardPrefix = "41697388"

// CardValidityYears is how long a new card stays valid.
const CardValidityYears = 3

const (
	defaultMaxAttempts  = 10
	ibanAccountDigits   = 16
	cardNumberSuffixLen = 8
)

var (
	ErrIdentityTaken = domain.NewError(domain.ErrAlreadyExists, "Email or private number is already registered")
	ErrUnderage      = domain.NewError(domain.ErrValidation, "Must be %d years or older", domain.MinimumAge)
	ErrInvalidRole   = domain.NewError(domain.ErrValidation, "Role must be user or operator")
	ErrInvalidIBAN   = domain.NewError(domain.ErrValidation, "Invalid IBAN format")
	ErrIBANTaken     = domain.NewError(domain.ErrAlreadyExists, "IBAN already exists")
	ErrNegativeStart = domain.NewError(domain.ErrValidation, "Initial balance cannot be negative")

	// errExhausted is returned when neither random nor sequential candidates
	// produced a free identifier.
	errExhausted = errors.New("identifier space exhausted")
)

// DigitSource returns n random decimal digits.
type DigitSource func(n int) (string, error)

// Service provisions users, accounts and cards.
type Service struct {
	uow          repository.UnitOfWork
	passwordCost int
	pinCost      int
	maxAttempts  int
	digits       DigitSource
	now          func() time.Time
	logger       *slog.Logger
}

func New(uow repository.UnitOfWork, cfg *config.Provisioning, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		uow:         uow,
		maxAttempts: defaultMaxAttempts,
		digits:      utils.RandomDigits,
		now:         time.Now,
		logger:      logger.With("service", "operator"),
	}
	if cfg != nil {
		s.passwordCost = cfg.PasswordBcryptCost
		s.pinCost = cfg.PinBcryptCost
		if cfg.MaxGenerationAttempts > 0 {
			s.maxAttempts = cfg.MaxGenerationAttempts
		}
	}
	return s
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithDigitSource replaces the random digit generator. Intended for tests.
func (s *Service) WithDigitSource(d DigitSource) *Service {
	s.digits = d
	return s
}

// CreateUser registers a customer or operator. Email and private number must
// be unused and the person must be of age.
func (s *Service) CreateUser(ctx context.Context, in dto.UserCreate) (*dto.UserRead, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	logger := s.logger.With("operation", "CreateUser", "email", email)
	logger.Info("CreateUser started")

	role := domain.RoleUser
	switch domain.Role(in.Role) {
	case "":
	case domain.RoleUser, domain.RoleOperator:
		role = domain.Role(in.Role)
	default:
		return nil, ErrInvalidRole
	}

	u := &domain.User{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(in.Name),
		Surname:       strings.TrimSpace(in.Surname),
		PrivateNumber: strings.TrimSpace(in.PrivateNumber),
		DateOfBirth:   in.DateOfBirth,
		Email:         email,
		Role:          role,
	}
	if u.AgeAt(s.now()) < domain.MinimumAge {
		logger.Warn("CreateUser refused: underage")
		return nil, ErrUnderage
	}

	users := s.uow.UserRepository()
	taken, err := users.ExistsByEmailOrPrivateNumber(ctx, u.Email, u.PrivateNumber)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}
	if taken {
		logger.Warn("CreateUser refused: identity taken")
		return nil, ErrIdentityTaken
	}

	if u.PasswordHash, err = utils.HashPassword(in.Password, s.passwordCost); err != nil {
		return nil, err
	}
	u.CreatedAt = s.now().UTC()
	if err := users.Create(ctx, u); errors.Is(err, domain.ErrAlreadyExists) {
		return nil, ErrIdentityTaken
	} else if err != nil {
		logger.Error("CreateUser failed", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("CreateUser successful", "user_id", u.ID, "role", u.Role)
	return mapper.MapUserToRead(u), nil
}

// CreateAccount opens an account for an existing user. An empty IBAN asks for
// a generated one.
func (s *Service) CreateAccount(ctx context.Context, in dto.AccountCreate) (*dto.AccountRead, error) {
	logger := s.logger.With("operation", "CreateAccount", "user_id", in.UserID)
	logger.Info("CreateAccount started", "currency", in.Currency)

	cur, err := money.ParseCode(in.Currency)
	if err != nil {
		return nil, domain.NewError(domain.ErrValidation, "Unsupported currency %q", in.Currency)
	}
	balance := decimal.Zero
	if in.Balance != nil {
		if in.Balance.IsNegative() {
			return nil, ErrNegativeStart
		}
		balance = money.Round(*in.Balance)
	}

	if _, err := s.uow.UserRepository().Get(ctx, in.UserID); errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}

	accounts := s.uow.AccountRepository()
	now := s.now().UTC()
	newAccount := func(ibanValue string) *domain.Account {
		return &domain.Account{
			ID:        uuid.New(),
			UserID:    in.UserID,
			IBAN:      ibanValue,
			Balance:   balance,
			Currency:  cur,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	var account *domain.Account
	if strings.TrimSpace(in.IBAN) != "" {
		value := iban.Normalize(in.IBAN)
		if err := iban.Validate(value); err != nil {
			logger.Warn("CreateAccount refused: invalid IBAN", "iban", value, "error", err)
			return nil, ErrInvalidIBAN
		}
		exists, err := accounts.ExistsIBAN(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("check iban: %w", err)
		}
		if exists {
			return nil, ErrIBANTaken
		}
		account = newAccount(value)
		if err := accounts.Create(ctx, account); errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrIBANTaken
		} else if err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
	} else {
		_, err := s.allocate(ctx, logger.With("kind", "iban"), allocator{
			random: func() (string, error) {
				digits, err := s.digits(ibanAccountDigits)
				if err != nil {
					return "", err
				}
				return iban.Build(digits)
			},
			sequential: func(n int64) (string, error) {
				return iban.Build(fmt.Sprintf("%0*d", ibanAccountDigits, n))
			},
			count:  accounts.Count,
			exists: accounts.ExistsIBAN,
			insert: func(ctx context.Context, value string) error {
				account = newAccount(value)
				return accounts.Create(ctx, account)
			},
		})
		if err != nil {
			logger.Error("CreateAccount failed: IBAN generation", "error", err)
			return nil, fmt.Errorf("generate iban: %w", err)
		}
	}

	logger.Info("CreateAccount successful", "account_id", account.ID, "iban", account.IBAN)
	return mapper.MapAccountToRead(account), nil
}

// CreateCard issues a card on an existing account. The card expires in the
// current month CardValidityYears from now.
func (s *Service) CreateCard(ctx context.Context, in dto.CardCreate) (*dto.CardRead, error) {
	logger := s.logger.With("operation", "CreateCard", "account_id", in.AccountID)
	logger.Info("CreateCard started")

	if len(in.PIN) != 4 || strings.Trim(in.PIN, "0123456789") != "" {
		return nil, domain.NewError(domain.ErrValidation, "PIN must be exactly 4 digits")
	}

	account, err := s.uow.AccountRepository().Get(ctx, in.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	holder := strings.TrimSpace(in.CardholderName)
	if holder == "" {
		owner, err := s.uow.UserRepository().Get(ctx, account.UserID)
		if err != nil {
			return nil, fmt.Errorf("load account owner: %w", err)
		}
		holder = owner.Name + " " + owner.Surname
	}

	pinHash, err := utils.HashPassword(in.PIN, s.pinCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cards := s.uow.CardRepository()
	var card *domain.Card
	_, err = s.allocate(ctx, logger.With("kind", "card_number"), allocator{
		random: func() (string, error) {
			digits, err := s.digits(cardNumberSuffixLen)
			if err != nil {
				return "", err
			}
			return CardPrefix + digits, nil
		},
		sequential: func(n int64) (string, error) {
			return fmt.Sprintf("%s%0*d", CardPrefix, cardNumberSuffixLen, n), nil
		},
		count:  cards.Count,
		exists: cards.ExistsNumber,
		insert: func(ctx context.Context, number string) error {
			card = &domain.Card{
				ID:              uuid.New(),
				AccountID:       account.ID,
				CardNumber:      number,
				CardholderName:  strings.ToUpper(holder),
				ExpirationMonth: int(now.Month()),
				ExpirationYear:  now.Year() + CardValidityYears,
				PINHash:         pinHash,
				CreatedAt:       now.UTC(),
			}
			return cards.Create(ctx, card)
		},
	})
	if err != nil {
		logger.Error("CreateCard failed", "error", err)
		return nil, fmt.Errorf("issue card: %w", err)
	}

	logger.Info("CreateCard successful", "card_id", card.ID)
	return mapper.MapCardToRead(card), nil
}

// allocator describes how to pick and store a unique identifier.
type allocator struct {
	random     func() (string, error)
	sequential func(n int64) (string, error)
	count      func(ctx context.Context) (int64, error)
	exists     func(ctx context.Context, value string) (bool, error)
	insert     func(ctx context.Context, value string) error
}

// allocate tries up to maxAttempts random candidates, then up to maxAttempts
// sequential ones starting after the current row count. A candidate that
// loses an insert race is treated like one that already existed.
func (s *Service) allocate(ctx context.Context, logger *slog.Logger, a allocator) (string, error) {
	try := func(candidate string) (bool, error) {
		taken, err := a.exists(ctx, candidate)
		if err != nil {
			return false, err
		}
		if taken {
			return false, nil
		}
		if err := a.insert(ctx, candidate); errors.Is(err, domain.ErrAlreadyExists) {
			return false, nil
		} else if err != nil {
			return false, err
		}
		return true, nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate, err := a.random()
		if err != nil {
			return "", err
		}
		ok, err := try(candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
		logger.Debug("Candidate collided", "attempt", attempt)
	}

	logger.Warn("Random candidates exhausted, falling back to sequential", "attempts", s.maxAttempts)
	n, err := a.count(ctx)
	if err != nil {
		return "", err
	}
	for i := int64(1); i <= int64(s.maxAttempts); i++ {
		candidate, err := a.sequential(n + i)
		if err != nil {
			return "", err
		}
		ok, err := try(candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}
	return "", errExhausted
}
