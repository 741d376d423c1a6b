package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/engine"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Offline bool
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize tracked accounts and reclaimed rent",
		Long: `Build a summary of the tracked account population: open, closed and
protected counts, total reclaimed lamports, and how long idle accounts
have been sitting on their rent.

By default the report also checks tracked balances against the current
rent-exemption minimum, which needs an RPC round trip per distinct data
size. Use --offline to skip that check and read only the database.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "skip the rent-exemption check, use only the database")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions)

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

	var client chain.Client
	if !opts.Offline {
		client = chain.NewRPCClient(cfg.Endpoint())
	}

	report, err := engine.BuildReport(cmd.Context(), st, client, time.Now().UTC())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build report", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		}
		return formatter.Success(report)
	}
	return report.Render(cmd.OutOrStdout())
}
