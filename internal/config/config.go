package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBFilename      string
	Addr            string
	CalendarID      string
	CredentialsFile string
	AdminToken      string
	FeedTimezone    string
}

func Load() (*Config, error) {
	// A .env file is optional, environment variables win either way.
	_ = godotenv.Load()

	return &Config{
		DBFilename:      getEnvOrDefault("RENTCAL_DB", "rentcal.db"),
		Addr:            getEnvOrDefault("RENTCAL_ADDR", ":8080"),
		CalendarID:      getEnvOrDefault("RENTCAL_CALENDAR_ID", "primary"),
		CredentialsFile: getEnvOrDefault("RENTCAL_CREDENTIALS", "google-credentials.json"),
		AdminToken:      os.Getenv("RENTCAL_ADMIN_TOKEN"),
		FeedTimezone:    getEnvOrDefault("RENTCAL_FEED_TIMEZONE", "Europe/Paris"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
