// Package config loads the Solana CLI config file and the environment
// settings of this tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults used when the Solana CLI config file is missing or incomplete.
const (
	DefaultRPCURL      = "https://api.mainnet-beta.solana.com"
	DefaultKeypairPath = "~/.config/solana/id.json"
	DefaultCommitment  = "confirmed"
)

// Solana mirrors the fields of ~/.config/solana/cli/config.yml the CLI uses.
type Solana struct {
	JSONRPCURL   string `yaml:"json_rpc_url"`
	WebsocketURL string `yaml:"websocket_url"`
	KeypairPath  string `yaml:"keypair_path"`
	Commitment   string `yaml:"commitment"`
}

// DefaultSolanaPath returns ~/.config/solana/cli/config.yml.
func DefaultSolanaPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "solana", "cli", "config.yml"), nil
}

// LoadSolana reads the config file at path. A missing file yields the
// defaults with found == false; any other read or parse error is returned.
func LoadSolana(path string) (cfg *Solana, found bool, err error) {
	cfg = &Solana{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg.applyDefaults()
		return cfg, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, true, nil
}

func (c *Solana) applyDefaults() {
	if c.JSONRPCURL == "" {
		c.JSONRPCURL = DefaultRPCURL
	}
	if c.KeypairPath == "" {
		c.KeypairPath = DefaultKeypairPath
	}
	if c.Commitment == "" {
		c.Commitment = DefaultCommitment
	}
}

// Keypair returns the keypair path with a leading ~ expanded.
func (c *Solana) Keypair() (string, error) {
	return ExpandHome(c.KeypairPath)
}

// WSURL returns the websocket endpoint, derived from the RPC URL when not
// set explicitly.
func (c *Solana) WSURL() (string, error) {
	if c.WebsocketURL != "" {
		return c.WebsocketURL, nil
	}
	return WebsocketURLFor(c.JSONRPCURL)
}

// WebsocketURLFor maps an RPC URL to its websocket URL: http becomes ws,
// https becomes wss, and an explicit port is incremented by one.
func WebsocketURLFor(rpcURL string) (string, error) {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return "", fmt.Errorf("parse RPC URL %q: %w", rpcURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported RPC URL scheme %q", u.Scheme)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("parse RPC port %q: %w", p, err)
		}
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port+1))
	}
	return u.String(), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ResolveURL expands the cluster monikers accepted by the Solana CLI
// (mainnet-beta, devnet, testnet, localhost and their initials).
func ResolveURL(s string) string {
	switch s {
	case "m", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "d", "devnet":
		return "https://api.devnet.solana.com"
	case "t", "testnet":
		return "https://api.testnet.solana.com"
	case "l", "localhost":
		return "http://localhost:8899"
	default:
		return s
	}
}
