package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/engine"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Refresh on-chain state for tracked accounts",
		Long: `Fetch the current on-chain attributes of every open tracked account.
Accounts that no longer exist are marked closed permanently. Balance
changes advance the account's last-activity slot.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, cmd)
		},
	}

	return cmd
}

func runAnalyze(opts *RootOptions, cmd *cobra.Command) error {
	log := setupLogging(opts)

	cfg, err := loadConfig(opts)
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
	analyzer := engine.NewAnalyzer(st, client, log)

	result, err := analyzer.Analyze(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "analyze failed", err)
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
		"analyze complete: %d checked, %d closed, %d active, %d failed",
		result.Checked, result.Closed, result.Active, result.Failed))
}
