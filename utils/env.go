package utils

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ErrNoDatabaseURL is returned when DATABASE_URL is missing from the environment.
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set (in .env or environment)")

// LoadEnv loads a .env file from the working directory when there is one.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		zap.S().Debug("no .env file found, continuing")
	}
}

// GetDatabaseURL returns DATABASE_URL after loading .env.
func GetDatabaseURL() (string, error) {
	LoadEnv()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", ErrNoDatabaseURL
	}
	return url, nil
}
