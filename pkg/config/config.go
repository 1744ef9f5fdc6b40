package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Jwt struct {
	Secret           string        `envconfig:"SECRET" required:"true"`
	Expiry           time.Duration `envconfig:"EXPIRY" default:"1h"`
	OperatorExpiry   time.Duration `envconfig:"OPERATOR_EXPIRY" default:"8h"`
	AtmSessionExpiry time.Duration `envconfig:"ATM_SESSION_EXPIRY" default:"3m"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:""`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

//revive:disable
type ExchangeRateApi struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

//revive:enable

// ExchangeRateCache controls where converted rates are kept and for how long.
// Historical rates never change once published, so they may live longer
// than current ones.
type ExchangeRateCache struct {
	Driver        string        `envconfig:"DRIVER" default:"memory"`
	CurrentTTL    time.Duration `envconfig:"CURRENT_TTL" default:"1h"`
	HistoricalTTL time.Duration `envconfig:"HISTORICAL_TTL" default:"24h"`
	Prefix        string        `envconfig:"PREFIX" default:"exr:rate:"`
}

type EventBus struct {
	Driver       string `envconfig:"DRIVER" default:"memory"`
	RedisStream  string `envconfig:"REDIS_STREAM" default:"ledger:events"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"ledger.events"`
}

// Ledger holds the money-movement policy knobs.
type Ledger struct {
	ReferenceCurrency      string          `envconfig:"REFERENCE_CURRENCY" default:"GEL"`
	DailyWithdrawalLimit   decimal.Decimal `envconfig:"DAILY_WITHDRAWAL_LIMIT" default:"10000"`
	TransferCommissionRate decimal.Decimal `envconfig:"TRANSFER_COMMISSION_RATE" default:"0.01"`
	AtmCommissionRate      decimal.Decimal `envconfig:"ATM_COMMISSION_RATE" default:"0.02"`
}

type Provisioning struct {
	MaxGenerationAttempts int `envconfig:"MAX_GENERATION_ATTEMPTS" default:"10"`
	PasswordBcryptCost    int `envconfig:"PASSWORD_BCRYPT_COST" default:"12"`
	PinBcryptCost         int `envconfig:"PIN_BCRYPT_COST" default:"10"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[banking]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Server            *Server            `envconfig:"SERVER"`
	Log               *Log               `envconfig:"LOG"`
	DB                *DB                `envconfig:"DATABASE"`
	Auth              *Auth              `envconfig:"AUTH"`
	ExchangeRateAPI   *ExchangeRateApi   `envconfig:"EXCHANGE_RATE_API"`
	ExchangeRateCache *ExchangeRateCache `envconfig:"EXCHANGE_RATE_CACHE"`
	Redis             *Redis             `envconfig:"REDIS"`
	EventBus          *EventBus          `envconfig:"EVENT_BUS"`
	RateLimit         *RateLimit         `envconfig:"RATE_LIMIT"`
	Ledger            *Ledger            `envconfig:"LEDGER"`
	Provisioning      *Provisioning      `envconfig:"PROVISIONING"`
}
