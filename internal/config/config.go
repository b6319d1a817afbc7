// Package config handles configuration loading and management
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingDatabaseURI is returned when DB_URI is not set.
	ErrMissingDatabaseURI = errors.New("DB_URI is not set")
	// ErrInvalidWorkers is returned for a non-positive worker count.
	ErrInvalidWorkers = errors.New("WORKERS must be a positive integer")

	errInvalidTag = errors.New("tag must be key=value")
)

// Config holds the application configuration
type Config struct {
	DatabaseURI      string
	TestFiles        string
	Workers          int
	MaxErroneousRows int
	// SafeHostnames lists the hosts fixture migrations are allowed to modify.
	SafeHostnames []string

	LogLevel     string
	LogToConsole bool
	LogToFile    bool
	LogFilePath  string

	LokiHost     string
	LokiUsername string
	LokiPassword string
	LokiTags     map[string]string
}

// Load reads configuration from environment variables and a dotenv file.
// An empty envFile reads .env when it exists; a named file must exist.
// Variables already set in the environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvTestFiles, DefaultTestsDir)
	v.SetDefault(EnvWorkers, DefaultWorkers)
	v.SetDefault(EnvMaxErroneousRows, DefaultMaxErroneousRows)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvLogToConsole, true)
	v.SetDefault(EnvLogToFile, false)
	v.SetDefault(EnvLogFilePath, DefaultLogFilePath)
	v.SetDefault(EnvLokiTags, DefaultLokiTags)
	v.SetDefault(EnvSafeHostnames, DefaultSafeHostnames)

	tags, err := parseTags(v.GetString(EnvLokiTags))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLokiTags, err)
	}

	cfg := &Config{
		DatabaseURI:      strings.TrimSpace(v.GetString(EnvDatabaseURI)),
		TestFiles:        v.GetString(EnvTestFiles),
		Workers:          v.GetInt(EnvWorkers),
		MaxErroneousRows: v.GetInt(EnvMaxErroneousRows),
		SafeHostnames:    splitList(v.GetString(EnvSafeHostnames)),
		LogLevel:         v.GetString(EnvLogLevel),
		LogToConsole:     v.GetBool(EnvLogToConsole),
		LogToFile:        v.GetBool(EnvLogToFile),
		LogFilePath:      v.GetString(EnvLogFilePath),
		LokiHost:         v.GetString(EnvLokiHost),
		LokiUsername:     v.GetString(EnvLokiUsername),
		LokiPassword:     v.GetString(EnvLokiPassword),
		LokiTags:         tags,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}

	return nil
}

// RequireDatabase returns ErrMissingDatabaseURI when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURI == "" {
		return ErrMissingDatabaseURI
	}

	return nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		// It's okay if the default file doesn't exist
		if err := godotenv.Load(DefaultEnvFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error loading %s file: %w", DefaultEnvFile, err)
		}

		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("error loading %s file: %w", envFile, err)
	}

	return nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var items []string

	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

// parseTags parses comma-separated key=value pairs.
func parseTags(s string) (map[string]string, error) {
	tags := make(map[string]string)

	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidTag, trimmed)
		}

		tags[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return tags, nil
}

func (c *Config) String() string {
	uriDisplay := "(not set)"
	if c.DatabaseURI != "" {
		uriDisplay = maskURI(c.DatabaseURI)
	}

	lokiDisplay := c.LokiHost
	if lokiDisplay == "" {
		lokiDisplay = "(disabled)"
	}

	lokiUserDisplay := c.LokiUsername
	if lokiUserDisplay == "" {
		lokiUserDisplay = "(not set)"
	}

	lokiPasswordDisplay := "(not set)"
	if c.LokiPassword != "" {
		lokiPasswordDisplay = "********"
	}

	logFileDisplay := "(disabled)"
	if c.LogToFile {
		logFileDisplay = c.LogFilePath
	}

	return fmt.Sprintf(`Current Configuration:
======================
Database URI:       %s
Test Files:         %s
Workers:            %d
Max Erroneous Rows: %d
Safe Hostnames:     %s
Log Level:          %s
Log To Console:     %t
Log File:           %s
Loki Host:          %s
Loki Username:      %s
Loki Password:      %s
Loki Tags:          %s`,
		uriDisplay,
		c.TestFiles,
		c.Workers,
		c.MaxErroneousRows,
		strings.Join(c.SafeHostnames, ", "),
		c.LogLevel,
		c.LogToConsole,
		logFileDisplay,
		lokiDisplay,
		lokiUserDisplay,
		lokiPasswordDisplay,
		formatTags(c.LokiTags),
	)
}

// maskURI hides the password portion of a URL-style connection string.
func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}

	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return uri
	}

	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return uri
	}

	return scheme + "://" + user + ":********@" + host
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "(none)"
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}

	return strings.Join(parts, ",")
}
