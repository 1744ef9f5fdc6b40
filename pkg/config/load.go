package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file it can find among envFilePath (searching up
// the directory tree) and then populates App from the process environment.
// Missing files are not an error; the environment alone may be enough.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"jwt_expiry", cfg.Auth.Jwt.Expiry,
		"atm_session_expiry", cfg.Auth.Jwt.AtmSessionExpiry,
		"exchange_api_url", cfg.ExchangeRateAPI.ApiUrl,
		"exchange_api_key", maskValue(cfg.ExchangeRateAPI.ApiKey),
		"rate_cache_driver", cfg.ExchangeRateCache.Driver,
		"event_bus_driver", cfg.EventBus.Driver,
		"reference_currency", cfg.Ledger.ReferenceCurrency,
		"daily_withdrawal_limit", cfg.Ledger.DailyWithdrawalLimit.String(),
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
