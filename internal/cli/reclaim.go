package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/engine"
)

// ReclaimOptions holds flags for the reclaim command.
type ReclaimOptions struct {
	*RootOptions
	DryRun bool
}

// NewReclaimCommand creates the reclaim command.
func NewReclaimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReclaimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reclaim [pubkey]",
		Short: "Reclaim rent from abandoned sponsor-funded accounts",
		Long: `Evaluate tracked accounts against the eligibility rules and reclaim
rent-exempt lamports back to the treasury. With a pubkey argument, only
that account is evaluated.

Dry-run is the default: every would-be reclaim is recorded in the audit
history without touching the chain. Pass --dry-run=false to submit real
close transactions, which requires the operator keypair.

Example:
  rentreclaim reclaim --config kora.yaml
  rentreclaim reclaim --dry-run=false
  rentreclaim reclaim 7nYa...vRk2 --dry-run=false`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey := ""
			if len(args) == 1 {
				pubkey = args[0]
			}
			return runReclaim(opts, pubkey, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "record reclaim intent without submitting transactions")

	return cmd
}

func runReclaim(opts *ReclaimOptions, pubkey string, cmd *cobra.Command) error {
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

	client := chain.NewRPCClient(cfg.Endpoint())

	var broadcaster chain.Broadcaster
	if !opts.DryRun {
		broadcaster, err = newBroadcaster(cfg, log)
		if err != nil {
			return err
		}
	}

	reclaimer := engine.NewReclaimer(st, client, broadcaster, newNotifier(cfg), treasury, log)

	var result engine.ReclaimResult
	if pubkey != "" {
		result, err = reclaimer.ReclaimOne(cmd.Context(), pubkey, opts.DryRun)
	} else {
		result, err = reclaimer.ReclaimAll(cmd.Context(), opts.DryRun)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "reclaim failed", err)
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
		"reclaim complete: %d evaluated, %d protected, %d skipped, %d dry runs, %d reclaimed, %d failed",
		result.Evaluated, result.Protected, result.Skipped, result.DryRuns, result.Reclaimed, result.Failed))
}
