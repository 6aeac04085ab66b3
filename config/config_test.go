package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty output dir",
			mutate: func(cfg *Config) {
				cfg.OutputDir = ""
			},
			wantErr: "output directory",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.Format = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "multi-character delimiter",
			mutate: func(cfg *Config) {
				cfg.Delimiter = "||"
			},
			wantErr: "single character",
		},
		{
			name: "alphanumeric delimiter",
			mutate: func(cfg *Config) {
				cfg.Delimiter = "a"
			},
			wantErr: "non-alphanumeric",
		},
		{
			name: "quote delimiter",
			mutate: func(cfg *Config) {
				cfg.Delimiter = `"`
			},
			wantErr: "non-alphanumeric",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
		{
			name: "zero cache size",
			mutate: func(cfg *Config) {
				cfg.CacheSize = 0
			},
			wantErr: "cache size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("ETL_TEST_STRING", "output/tables")
	if value, ok := EnvString("ETL_TEST_STRING"); !ok || value != "output/tables" {
		t.Errorf("EnvString = %q, %v", value, ok)
	}
	if _, ok := EnvString("ETL_TEST_STRING_ABSENT"); ok {
		t.Errorf("absent variable should not report set")
	}
	t.Setenv("ETL_TEST_EMPTY", "")
	if _, ok := EnvString("ETL_TEST_EMPTY"); ok {
		t.Errorf("empty variable should not report set")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("ETL_TEST_INT", "2048")
	value, ok, err := EnvInt("ETL_TEST_INT")
	if err != nil || !ok || value != 2048 {
		t.Errorf("EnvInt = %d, %v, %v", value, ok, err)
	}

	t.Setenv("ETL_TEST_BAD_INT", "lots")
	if _, _, err := EnvInt("ETL_TEST_BAD_INT"); err == nil {
		t.Errorf("expected parse error")
	}

	if _, ok, err := EnvInt("ETL_TEST_INT_ABSENT"); ok || err != nil {
		t.Errorf("absent variable: ok=%v err=%v", ok, err)
	}
}
