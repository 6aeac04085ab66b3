package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode"
)

// Config holds the ETL run configuration.
type Config struct {
	OutputDir   string
	Format      string // dat, csv, or dual
	Delimiter   string
	Timeout     time.Duration
	UserAgent   string
	MetricsAddr string
	CacheSize   int
	Verbose     bool
}

// DefaultConfig returns the defaults for a local batch run.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:   "output",
		Format:      "dat",
		Delimiter:   "|",
		Timeout:     10 * time.Second,
		UserAgent:   "auction-etl/1.0",
		MetricsAddr: "",
		CacheSize:   4096,
		Verbose:     false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Format != "dat" && c.Format != "csv" && c.Format != "dual" {
		return fmt.Errorf("output format must be dat, csv, or dual")
	}
	if len(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}
	d := rune(c.Delimiter[0])
	if unicode.IsLetter(d) || unicode.IsDigit(d) || d == '"' {
		return fmt.Errorf("delimiter must be non-alphanumeric and not a quote")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	return nil
}

// EnvString reads an environment variable, reporting whether it was set.
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable, reporting whether it was
// set and whether it parsed.
func EnvInt(name string) (int, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return parsed, true, nil
}
