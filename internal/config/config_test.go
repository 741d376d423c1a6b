package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTreasury = "So11111111111111111111111111111111111111112"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, NetworkMainnet, cfg.Network)
	assert.Equal(t, "rent_reclaim.db", cfg.DatabasePath)
	assert.Equal(t, 100, cfg.ScanLimit)
	assert.Equal(t, 10*time.Minute, cfg.Interval)
	assert.True(t, cfg.DryRun, "dry run is the conservative default")
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network: devnet
treasury_pubkey: `+validTreasury+`
database_path: /tmp/reclaim.db
scan_limit: 50
interval: 5m
dry_run: false
telegram:
  bot_token: tok
  chat_id: 99
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, NetworkDevnet, cfg.Network)
	assert.Equal(t, validTreasury, cfg.TreasuryPubkey)
	assert.Equal(t, "/tmp/reclaim.db", cfg.DatabasePath)
	assert.Equal(t, 50, cfg.ScanLimit)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, int64(99), cfg.Telegram.ChatID)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("treasury_pubkey: from-file\n"), 0o600))

	t.Setenv("KORA_TREASURY_PUBKEY", validTreasury)
	t.Setenv("TELEGRAM_CHAT_ID", "1234")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, validTreasury, cfg.TreasuryPubkey)
	assert.Equal(t, int64(1234), cfg.Telegram.ChatID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Network = "testnet"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ScanLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TreasuryPubkey = "not base58!"
	assert.Error(t, cfg.Validate())
}

func TestTreasury(t *testing.T) {
	cfg := Default()
	_, err := cfg.Treasury()
	assert.Error(t, err, "missing treasury is a configuration failure")

	cfg.TreasuryPubkey = validTreasury
	pk, err := cfg.Treasury()
	require.NoError(t, err)
	assert.Equal(t, validTreasury, pk.String())
}

func TestEndpoint(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.Endpoint(), "mainnet")

	cfg.Network = NetworkDevnet
	assert.Contains(t, cfg.Endpoint(), "devnet")

	cfg.RPCEndpoint = "http://localhost:8899"
	assert.Equal(t, "http://localhost:8899", cfg.Endpoint())
}
