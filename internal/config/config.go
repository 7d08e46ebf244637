package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection: "script" (remote spreadsheet script) or "memory"
	DataBackend string

	// Remote script endpoint
	ScriptURL    string
	ScriptAPIKey string

	// Payment options cache
	OptionsCacheTTL time.Duration

	// Rate limiting for submissions
	RequestsPerMinute int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8082"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		ScriptURL:    getEnv("SCRIPT_URL", ""),
		ScriptAPIKey: getEnv("SCRIPT_API_KEY", ""),

		OptionsCacheTTL:   getEnvDuration("OPTIONS_CACHE_TTL", 5*time.Minute),
		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 60),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"script", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// The script backend has no defaults: a missing URL or key is a hard
	// failure, never silently substituted.
	if c.DataBackend == "script" {
		if c.ScriptURL == "" {
			errors = append(errors, "SCRIPT_URL is required when using script backend")
		} else if parsedURL, err := url.Parse(c.ScriptURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid script URL '%s': %v", c.ScriptURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid script URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.ScriptAPIKey == "" {
			errors = append(errors, "SCRIPT_API_KEY is required when using script backend")
		}
	}

	if c.OptionsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid options cache TTL %v: must be at least 1 second", c.OptionsCacheTTL))
	} else if c.OptionsCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid options cache TTL %v: must be at most 24 hours", c.OptionsCacheTTL))
	}

	if c.RequestsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid requests per minute %d: must be at least 1", c.RequestsPerMinute))
	} else if c.RequestsPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid requests per minute %d: must be at most 10000", c.RequestsPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
