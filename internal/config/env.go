// Package config provides environment configuration helpers shared by the
// service mains.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ValidateEnv returns an error naming every required variable that is unset.
func ValidateEnv(required []string) error {
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateJWTSecret ensures JWT_SECRET is present and not trivially short.
func ValidateJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	return nil
}

// GetEnvOrDefault retrieves an environment variable or returns a default.
func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// MustGetEnv retrieves an environment variable or panics.
func MustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}
