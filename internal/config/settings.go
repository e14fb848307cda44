package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by LoadSettings.
const (
	EnvHeliusURL      = "SOLANA_CLI_HELIUS_URL"
	EnvJupiterURL     = "SOLANA_CLI_JUPITER_URL"
	EnvRPCTimeout     = "SOLANA_CLI_RPC_TIMEOUT"
	EnvRPCMaxRetries  = "SOLANA_CLI_RPC_MAX_RETRIES"
	EnvHeliusRPS      = "SOLANA_CLI_HELIUS_RPS"
	EnvConfirmTimeout = "SOLANA_CLI_CONFIRM_TIMEOUT"
	EnvConfirmPoll    = "SOLANA_CLI_CONFIRM_POLL_INTERVAL"
	EnvLogLevel       = "SOLANA_CLI_LOG_LEVEL"
)

// Settings holds tool configuration loaded from environment variables.
type Settings struct {
	HeliusURL      string
	JupiterURL     string
	RPCTimeout     time.Duration
	RPCMaxRetries  int
	HeliusRPS      float64
	ConfirmTimeout time.Duration
	ConfirmPoll    time.Duration
	LogLevel       string

	// Warnings lists variables that were set but unparsable; the logger
	// does not exist yet when settings are loaded.
	Warnings []string
}

// LoadSettings reads configuration from environment variables with defaults.
func LoadSettings() Settings {
	s := Settings{}
	s.HeliusURL = envOrDefault(EnvHeliusURL, "https://mainnet.helius-rpc.com/")
	s.JupiterURL = envOrDefault(EnvJupiterURL, "https://lite-api.jup.ag/price/v2")
	s.RPCTimeout = s.envOrDefaultDuration(EnvRPCTimeout, 30*time.Second)
	s.RPCMaxRetries = s.envOrDefaultInt(EnvRPCMaxRetries, 0)
	s.HeliusRPS = s.envOrDefaultFloat(EnvHeliusRPS, 10)
	s.ConfirmTimeout = s.envOrDefaultDuration(EnvConfirmTimeout, 60*time.Second)
	s.ConfirmPoll = s.envOrDefaultDuration(EnvConfirmPoll, 2*time.Second)
	s.LogLevel = envOrDefault(EnvLogLevel, "warn")
	return s
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *Settings) warn(key, value string, defaultVal any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf("invalid %s=%q, using default %v", key, value, defaultVal))
}

func (s *Settings) envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.warn(key, v, defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func (s *Settings) envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			s.warn(key, v, defaultVal)
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func (s *Settings) envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			s.warn(key, v, defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
