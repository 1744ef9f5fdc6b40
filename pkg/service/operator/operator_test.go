package operator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/domain"
	"github.com/zezva802/Banking-system/pkg/dto"
	"github.com/zezva802/Banking-system/pkg/iban"
	"github.com/zezva802/Banking-system/pkg/money"
	"github.com/zezva802/Banking-system/pkg/service/operator"
	"github.com/zezva802/Banking-system/pkg/testutils"
	"github.com/zezva802/Banking-system/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newService(store *testutils.Store) *operator.Service {
	cfg := &config.Provisioning{
		MaxGenerationAttempts: 3,
		PasswordBcryptCost:    bcrypt.MinCost,
		PinBcryptCost:         bcrypt.MinCost,
	}
	return operator.New(store.UoW(), cfg, testutils.DiscardLogger()).
		WithClock(func() time.Time { return fixedNow })
}

func constantDigits(d string) operator.DigitSource {
	return func(n int) (string, error) { return d[:n], nil }
}

func validUser() dto.UserCreate {
	return dto.UserCreate{
		Name:          "Nino",
		Surname:       "Beridze",
		PrivateNumber: "01001011234",
		DateOfBirth:   time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Email:         "Nino@Example.com",
		Password:      "password123",
	}
}

func seedOwner(store *testutils.Store) *domain.User {
	u := &domain.User{ID: uuid.New(), Name: "Nino", Surname: "Beridze", Email: "nino@example.com",
		PrivateNumber: "01001011234", Role: domain.RoleUser}
	store.SeedUser(u)
	return u
}

func TestCreateUser_Success(t *testing.T) {
	store := testutils.NewStore()
	svc := newService(store)

	got, err := svc.CreateUser(context.Background(), validUser())
	require.NoError(t, err)
	assert.Equal(t, "nino@example.com", got.Email)
	assert.Equal(t, "user", got.Role)
	assert.True(t, utils.CheckPasswordHash("password123", got.HashedPassword))
	assert.NotEqual(t, "password123", got.HashedPassword)
}

func TestCreateUser_OperatorRole(t *testing.T) {
	svc := newService(testutils.NewStore())
	in := validUser()
	in.Role = "operator"

	got, err := svc.CreateUser(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "operator", got.Role)

	in.Role = "admin"
	in.Email, in.PrivateNumber = "other@example.com", "01001019999"
	_, err = svc.CreateUser(context.Background(), in)
	assert.ErrorIs(t, err, operator.ErrInvalidRole)
}

func TestCreateUser_Conflicts(t *testing.T) {
	store := testutils.NewStore()
	svc := newService(store)
	_, err := svc.CreateUser(context.Background(), validUser())
	require.NoError(t, err)

	sameEmail := validUser()
	sameEmail.PrivateNumber = "01001019999"
	_, err = svc.CreateUser(context.Background(), sameEmail)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	sameNumber := validUser()
	sameNumber.Email = "someone@example.com"
	_, err = svc.CreateUser(context.Background(), sameNumber)
	assert.ErrorIs(t, err, operator.ErrIdentityTaken)
}

func TestCreateUser_AgeBoundary(t *testing.T) {
	svc := newService(testutils.NewStore())

	young := validUser()
	young.DateOfBirth = time.Date(2007, 6, 16, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateUser(context.Background(), young)
	assert.ErrorIs(t, err, operator.ErrUnderage)
	assert.ErrorIs(t, err, domain.ErrValidation)

	adult := validUser()
	adult.DateOfBirth = time.Date(2007, 6, 15, 0, 0, 0, 0, time.UTC)
	_, err = svc.CreateUser(context.Background(), adult)
	assert.NoError(t, err)
}

func TestCreateAccount_SuppliedIBAN(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	svc := newService(store)
	start := decimal.RequireFromString("150.005")

	got, err := svc.CreateAccount(context.Background(), dto.AccountCreate{
		UserID:   owner.ID,
		Currency: "usd",
		IBAN:     " ge29 nb00 0000 0101 9049 17 ",
		Balance:  &start,
	})
	require.NoError(t, err)
	assert.Equal(t, "GE29NB0000000101904917", got.IBAN)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "150.01", got.Balance.StringFixed(2))

	_, err = svc.CreateAccount(context.Background(), dto.AccountCreate{
		UserID: owner.ID, Currency: "GEL", IBAN: "GE29NB0000000101904917",
	})
	assert.ErrorIs(t, err, operator.ErrIBANTaken)
}

func TestCreateAccount_Rejections(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	svc := newService(store)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name string
		in   dto.AccountCreate
		want error
	}{
		{"bad checksum", dto.AccountCreate{UserID: owner.ID, Currency: "GEL", IBAN: "GE28NB0000000101904917"}, operator.ErrInvalidIBAN},
		{"wrong country", dto.AccountCreate{UserID: owner.ID, Currency: "GEL", IBAN: "DE89370400440532013000"}, operator.ErrInvalidIBAN},
		{"unknown user", dto.AccountCreate{UserID: uuid.New(), Currency: "GEL"}, domain.ErrUserNotFound},
		{"unsupported currency", dto.AccountCreate{UserID: owner.ID, Currency: "GBP"}, domain.ErrValidation},
		{"negative balance", dto.AccountCreate{UserID: owner.ID, Currency: "GEL", Balance: &negative}, operator.ErrNegativeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateAccount_GeneratedIBANIsValid(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	svc := newService(store)

	got, err := svc.CreateAccount(context.Background(), dto.AccountCreate{UserID: owner.ID, Currency: "GEL"})
	require.NoError(t, err)
	assert.NoError(t, iban.Validate(got.IBAN))
	assert.True(t, strings.HasPrefix(got.IBAN, "GE"))
	assert.Equal(t, "NB", got.IBAN[4:6])
	assert.True(t, got.Balance.IsZero())
}

func TestCreateAccount_FallsBackToSequentialIBAN(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	svc := newService(store).WithDigitSource(constantDigits("0000000000000001"))

	first, err := svc.CreateAccount(context.Background(), dto.AccountCreate{UserID: owner.ID, Currency: "GEL"})
	require.NoError(t, err)
	want, err := iban.Build("0000000000000001")
	require.NoError(t, err)
	assert.Equal(t, want, first.IBAN)

	second, err := svc.CreateAccount(context.Background(), dto.AccountCreate{UserID: owner.ID, Currency: "GEL"})
	require.NoError(t, err)
	want, err = iban.Build("0000000000000002")
	require.NoError(t, err)
	assert.Equal(t, want, second.IBAN)
}

func TestCreateCard_Success(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	account := &domain.Account{ID: uuid.New(), UserID: owner.ID, IBAN: "GE29NB0000000101904917", Currency: money.GEL}
	store.SeedAccount(account)
	svc := newService(store)

	got, err := svc.CreateCard(context.Background(), dto.CardCreate{AccountID: account.ID, CardholderName: "Nino Beridze", PIN: "1234"})
	require.NoError(t, err)
	assert.Len(t, got.CardNumber, 16)
	assert.True(t, strings.HasPrefix(got.CardNumber, operator.CardPrefix))
	assert.Equal(t, "NINO BERIDZE", got.CardholderName)
	assert.Equal(t, 6, got.ExpirationMonth)
	assert.Equal(t, 2028, got.ExpirationYear)

	stored, ok := store.Card(got.ID)
	require.True(t, ok)
	assert.True(t, utils.CheckPasswordHash("1234", stored.PINHash))
}

func TestCreateCard_DefaultsHolderToOwner(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	account := &domain.Account{ID: uuid.New(), UserID: owner.ID, IBAN: "GE29NB0000000101904917", Currency: money.GEL}
	store.SeedAccount(account)

	got, err := newService(store).CreateCard(context.Background(), dto.CardCreate{AccountID: account.ID, PIN: "0000"})
	require.NoError(t, err)
	assert.Equal(t, "NINO BERIDZE", got.CardholderName)
}

func TestCreateCard_SequentialFallbackSkipsTaken(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	account := &domain.Account{ID: uuid.New(), UserID: owner.ID, IBAN: "GE29NB0000000101904917", Currency: money.GEL}
	store.SeedAccount(account)
	svc := newService(store).WithDigitSource(constantDigits("00000002"))

	first, err := svc.CreateCard(context.Background(), dto.CardCreate{AccountID: account.ID, CardholderName: "A B", PIN: "1111"})
	require.NoError(t, err)
	assert.Equal(t, "4169738800000002", first.CardNumber)

	// one card exists, so the sequence starts at 2, which is taken
	second, err := svc.CreateCard(context.Background(), dto.CardCreate{AccountID: account.ID, CardholderName: "A B", PIN: "1111"})
	require.NoError(t, err)
	assert.Equal(t, "4169738800000003", second.CardNumber)
}

func TestCreateCard_Rejections(t *testing.T) {
	store := testutils.NewStore()
	svc := newService(store)

	_, err := svc.CreateCard(context.Background(), dto.CardCreate{AccountID: uuid.New(), CardholderName: "A B", PIN: "1234"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = svc.CreateCard(context.Background(), dto.CardCreate{AccountID: uuid.New(), CardholderName: "A B", PIN: "12a4"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateCard_DigitSourceFailure(t *testing.T) {
	store := testutils.NewStore()
	owner := seedOwner(store)
	account := &domain.Account{ID: uuid.New(), UserID: owner.ID, IBAN: "GE29NB0000000101904917", Currency: money.GEL}
	store.SeedAccount(account)
	boom := errors.New("entropy unavailable")
	svc := newService(store).WithDigitSource(func(int) (string, error) { return "", boom })

	_, err := svc.CreateCard(context.Background(), dto.CardCreate{AccountID: account.ID, CardholderName: "A B", PIN: "1234"})
	assert.ErrorIs(t, err, boom)
}
