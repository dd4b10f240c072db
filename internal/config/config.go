package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/Informa/internal/utils"
)

type Config struct {
	Addr      string
	Commit    string
	BuildTime string
	LogMode   string
	StaticDir string

	DBDriver          string
	DBDSN             string
	SQLitePath        string
	MigrationsDir     string
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration

	CatalogPath   string
	Timezone      string
	LegacyLogPath string
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg := &Config{
		Addr:      utils.SafeEnv("INFORMA_ADDR", ":8080"),
		Commit:    utils.SafeEnv("INFORMA_COMMIT", ""),
		BuildTime: utils.SafeEnv("INFORMA_BUILD_TIME", ""),
		LogMode:   utils.SafeEnv("INFORMA_LOG_MODE", "dev"),
		StaticDir: utils.SafeEnv("INFORMA_STATIC_DIR", ""),

		DBDriver:          strings.ToLower(utils.SafeEnv("INFORMA_DB_DRIVER", "sqlite3")),
		DBDSN:             utils.SafeEnv("INFORMA_DB_DSN", utils.SafeEnv("DATABASE_URL", "")),
		SQLitePath:        utils.SafeEnv("INFORMA_SQLITE_PATH", "data/informa.db"),
		MigrationsDir:     utils.SafeEnv("INFORMA_MIGRATIONS_DIR", ""),
		DBMaxOpenConns:    utils.EnvInt("INFORMA_DB_MAX_OPEN_CONNS", 10),
		DBConnMaxLifetime: utils.EnvDuration("INFORMA_DB_CONN_MAX_LIFETIME", 30*time.Minute),

		CatalogPath:   utils.SafeEnv("INFORMA_CATALOG_PATH", ""),
		Timezone:      utils.SafeEnv("INFORMA_TIMEZONE", "Europe/Madrid"),
		LegacyLogPath: utils.SafeEnv("INFORMA_LEGACY_LOG", ""),
	}
	return cfg, nil
}

// Location resolves the time zone used to print submission dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
