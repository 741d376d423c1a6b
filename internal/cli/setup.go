package cli

import (
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/kora-labs/rent-reclaim/internal/alert"
	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/config"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// setupLogging configures the default slog logger based on the verbose
// flag and returns it. All diagnostic logging goes to stderr so stdout
// stays clean for command output.
func setupLogging(opts *RootOptions) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// loadConfig loads the effective configuration: defaults, optional config
// file, environment overrides, then command-line overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return cfg, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openStore opens the SQLite database at the configured path, creating it
// if it does not exist.
func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// requireTreasury parses the configured treasury pubkey, which scanning
// and reclaiming both need.
func requireTreasury(cfg config.Config) (solana.PublicKey, error) {
	treasury, err := cfg.Treasury()
	if err != nil {
		return solana.PublicKey{}, WrapExitError(ExitCommandError, "treasury not configured", err)
	}
	return treasury, nil
}

// newBroadcaster builds the signing broadcaster from the configured
// operator keypair. Returns nil (no signing capability) when no keypair
// file is configured; live reclaims then degrade to warn-and-skip.
func newBroadcaster(cfg config.Config, log *slog.Logger) (chain.Broadcaster, error) {
	if cfg.OperatorKeypairFile == "" {
		return nil, nil
	}
	key, err := chain.LoadOperatorKey(cfg.OperatorKeypairFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load operator keypair", err)
	}
	signer := chain.NewSigner(cfg.Endpoint(), key)
	log.Debug("operator keypair loaded", "authority", signer.Authority().String())
	return signer, nil
}

// newNotifier builds the alert notifier from config. Without Telegram
// credentials, alerts are dropped silently.
func newNotifier(cfg config.Config) alert.Notifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return alert.Nop{}
	}
	return alert.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}
