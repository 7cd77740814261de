package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string
	LogLevel    zerolog.Level

	FXBaseURL     string
	FXToken       string
	FXTimeout     time.Duration
	FXConcurrency int

	// Location is the business time zone of operation dates.
	Location        *time.Location
	ReportCreator   string
	ReportSheetName string
}

// Load reads the environment. A .env file in the working directory, when
// present, fills in variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "settlement"),
		DBPassword:    getEnv("DB_PASSWORD", "settlement_secret"),
		DBName:        getEnv("DB_NAME", "settlement"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		AutoMigrate:   getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getLevel("LOG_LEVEL", zerolog.InfoLevel),
		FXBaseURL:     getEnv("FX_BASE_URL", "https://api.apis.net.pe/v1/tipo-cambio-sunat"),
		FXToken:       getEnv("FX_TOKEN", ""),
		FXTimeout:     getDuration("FX_TIMEOUT", 10*time.Second),
		FXConcurrency: getInt("FX_CONCURRENCY", 4),

		Location:        getLocation("SETTLEMENT_TZ", "America/Lima"),
		ReportCreator:   getEnv("REPORT_CREATOR", "quota-settlement"),
		ReportSheetName: getEnv("REPORT_SHEET_NAME", "Settlement"),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getLevel(key string, fallback zerolog.Level) zerolog.Level {
	lvl, err := zerolog.ParseLevel(getEnv(key, ""))
	if err != nil || lvl == zerolog.NoLevel {
		return fallback
	}
	return lvl
}

func getLocation(key, fallback string) *time.Location {
	if loc, err := time.LoadLocation(getEnv(key, fallback)); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc
	}
	return time.UTC
}
