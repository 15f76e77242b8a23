package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file when one exists.
// Missing files are fine; system-wide environment variables may already be
// set.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// DashScopeAPIKey returns the server-side default STT API key, or "" when
// none is configured. Per-request keys and the config store take precedence
// over this value.
func DashScopeAPIKey() string {
	return strings.TrimSpace(os.Getenv("DASHSCOPE_API_KEY"))
}
