package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/engine"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Limit int
	Full  bool
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover accounts funded by the sponsor treasury",
		Long: `Walk recent finalized transactions of the sponsor treasury and register
every account it created and funded. Discovery is idempotent; known
accounts are left untouched.

Incremental by default: the walk stops at the checkpoint left by the
previous scan. Use --full to ignore the checkpoint and walk the entire
window again.

Example:
  rentreclaim scan --config kora.yaml
  rentreclaim scan --limit 500 --full`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max signatures to walk (default: config scan_limit)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "ignore the scan checkpoint and walk the full window")

	return cmd
}

func runScan(opts *ScanOptions, cmd *cobra.Command) error {
	log := setupLogging(opts.RootOptions)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	treasury, err := requireTreasury(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.ScanLimit
	}

	client := chain.NewRPCClient(cfg.Endpoint())
	scanner := engine.NewScanner(st, client, log)

	result, err := scanner.Scan(cmd.Context(), treasury, limit, opts.Full)
	if err != nil {
		return WrapExitError(ExitFailure, "scan failed", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf(
		"scan complete: %d signatures walked, %d discovered, %d skipped, %d parse errors",
		result.Signatures, result.Discovered, result.Skipped, result.ParseErrors))
}
