package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Jacobbrewer1/warden/pkg/dataaccess/connection"
	"github.com/joho/godotenv"
)

// ErrIncomplete is returned when a required value is missing.
var ErrIncomplete = errors.New("incomplete configuration")

// Parse reads the configuration from the environment. A .env file in the
// working directory is loaded first without overriding the environment.
func Parse(l *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	c := new(Config)

	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		c.BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		c.ApplicationId = envAppId
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		c.MonitoringPort = envMonitoringPort
	} else {
		c.MonitoringPort = DefaultMonitoringPort
		l.Info("No monitoring port provided in environment, defaulting to "+DefaultMonitoringPort, slog.String("key", EnvMonitoringPort))
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(os.Getenv(EnvStoreDriver)))
	if c.StoreDriver == "" {
		c.StoreDriver = connection.DriverSQLite
	}
	c.DatabaseDSN = os.Getenv(EnvDatabaseDSN)
	c.MongoUri = os.Getenv(EnvMongoUri)
	c.MongoDatabase = os.Getenv(EnvMongoDatabase)
	if c.MongoDatabase == "" {
		c.MongoDatabase = DefaultMongoDatabase
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	l.Debug("All required environment variables have been provided", slog.String("store", c.StoreDriver))
	return c, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, EnvBotToken)
	}
	if c.ApplicationId == "" {
		missing = append(missing, EnvApplicationId)
	}

	switch c.StoreDriver {
	case connection.DriverSQLite:
	case connection.DriverMySQL:
		if c.DatabaseDSN == "" {
			missing = append(missing, EnvDatabaseDSN)
		}
	case DriverMongo:
		if c.MongoUri == "" {
			missing = append(missing, EnvMongoUri)
		}
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrIncomplete, EnvStoreDriver, c.StoreDriver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
