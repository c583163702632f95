package config

import (
	"os"
	"strings"
)

// EnvModeKey selects which environment-specific config files are loaded.
const EnvModeKey = "DATAPREP_ENV"

// Mode is the environment the tool runs in.
type Mode string

const (
	DevMode  Mode = "development"
	ProMode  Mode = "production"
	TestMode Mode = "test"
)

// ParseMode normalises an environment name. Unknown names mean development.
func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// ModeFromEnv reads the mode from DATAPREP_ENV.
func ModeFromEnv() Mode {
	return ParseMode(os.Getenv(EnvModeKey))
}

// aliases returns the short file suffixes accepted for m besides its full name.
func (m Mode) aliases() []string {
	switch m {
	case DevMode:
		return []string{"dev"}
	case ProMode:
		return []string{"pro", "prod"}
	default:
		return nil
	}
}
