// Package config holds the explicit runtime configuration. Everything the
// components need is loaded once at startup and passed in; no component
// reads the environment on its own.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"
)

// Network selects which cluster the service talks to. Selection is always
// explicit; there is no implicit default endpoint beyond the named cluster.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
)

// Telegram configures the optional outbound alert channel.
type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Config is the full runtime configuration.
type Config struct {
	Network     Network `yaml:"network"`
	RPCEndpoint string  `yaml:"rpc_endpoint"` // optional, overrides the cluster default

	// TreasuryPubkey is the sponsor identity whose fee-payer transactions
	// the scanner walks and to which reclaimed funds return.
	TreasuryPubkey string `yaml:"treasury_pubkey"`

	// OperatorKeypairFile holds the signing authority for live reclaims.
	// Without it, live reclaim degrades to a warn-and-skip.
	OperatorKeypairFile string `yaml:"operator_keypair_file"`

	DatabasePath string `yaml:"database_path"`

	ScanLimit int           `yaml:"scan_limit"`
	Interval  time.Duration `yaml:"interval"`
	DryRun    bool          `yaml:"dry_run"`

	Telegram Telegram `yaml:"telegram"`
}

// Default returns the baseline configuration before file and environment
// overrides.
func Default() Config {
	return Config{
		Network:      NetworkMainnet,
		DatabasePath: "rent_reclaim.db",
		ScanLimit:    100,
		Interval:     10 * time.Minute,
		DryRun:       true,
	}
}

// Load builds the configuration: defaults, then the YAML file (if path is
// non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers environment variables over the file config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("KORA_TREASURY_PUBKEY"); v != "" {
		cfg.TreasuryPubkey = v
	}
	if v := os.Getenv("KORA_OPERATOR_KEYPAIR"); v != "" {
		cfg.OperatorKeypairFile = v
	}
	if v := os.Getenv("KORA_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("KORA_RPC_ENDPOINT"); v != "" {
		cfg.RPCEndpoint = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
}

// Validate checks the fields every operation depends on. Operations with
// extra requirements (a treasury for scanning, an operator key for live
// reclaim) check those at the call site.
func (c Config) Validate() error {
	switch c.Network {
	case NetworkMainnet, NetworkDevnet:
	default:
		return fmt.Errorf("config: unknown network %q", c.Network)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("config: database_path is required")
	}
	if c.ScanLimit <= 0 {
		return fmt.Errorf("config: scan_limit must be positive")
	}
	if c.TreasuryPubkey != "" {
		if _, err := solana.PublicKeyFromBase58(c.TreasuryPubkey); err != nil {
			return fmt.Errorf("config: invalid treasury_pubkey: %w", err)
		}
	}
	return nil
}

// Treasury parses the configured sponsor identity.
func (c Config) Treasury() (solana.PublicKey, error) {
	if c.TreasuryPubkey == "" {
		return solana.PublicKey{}, fmt.Errorf("config: treasury_pubkey is not set (or KORA_TREASURY_PUBKEY)")
	}
	pk, err := solana.PublicKeyFromBase58(c.TreasuryPubkey)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("config: invalid treasury_pubkey: %w", err)
	}
	return pk, nil
}

// Endpoint returns the RPC endpoint: the explicit override when set,
// otherwise the named cluster's public endpoint.
func (c Config) Endpoint() string {
	if c.RPCEndpoint != "" {
		return c.RPCEndpoint
	}
	if c.Network == NetworkDevnet {
		return rpc.DevNet_RPC
	}
	return rpc.MainNetBeta_RPC
}
