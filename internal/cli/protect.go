package cli

import (
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// ProtectOptions holds flags for the protect command.
type ProtectOptions struct {
	*RootOptions
	Reason string
}

// NewProtectCommand creates the protect command.
func NewProtectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProtectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "protect <pubkey>",
		Short: "Exempt an account from reclaiming",
		Long: `Add a manual protection entry for an account. Protected accounts are
never reclaimed, whatever the eligibility rules say. Protection is
idempotent; re-protecting keeps the original reason.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProtect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reason, "reason", "", "why this account must not be reclaimed (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func runProtect(opts *ProtectOptions, pubkey string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions)

	if _, err := solana.PublicKeyFromBase58(pubkey); err != nil {
		return WrapExitError(ExitCommandError, "invalid pubkey", err)
	}

	cfg, err := loadConfig(opts.RootOptions)
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

	added, err := st.Protect(cmd.Context(), pubkey, opts.Reason)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to protect account", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"pubkey": pubkey,
			"added":  added,
		})
	}
	if added {
		return formatter.Success(fmt.Sprintf("protected %s", pubkey))
	}
	return formatter.Success(fmt.Sprintf("%s is already protected", pubkey))
}

// NewUnprotectCommand creates the unprotect command.
func NewUnprotectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unprotect <pubkey>",
		Short: "Remove an account's protection entry",
		Long: `Remove the manual protection entry for an account, returning it to
normal eligibility evaluation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnprotect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runUnprotect(opts *RootOptions, pubkey string, cmd *cobra.Command) error {
	setupLogging(opts)

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

	removed, err := st.Unprotect(cmd.Context(), pubkey)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to unprotect account", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"pubkey":  pubkey,
			"removed": removed,
		})
	}
	if removed {
		return formatter.Success(fmt.Sprintf("unprotected %s", pubkey))
	}
	return formatter.Success(fmt.Sprintf("%s was not protected", pubkey))
}
