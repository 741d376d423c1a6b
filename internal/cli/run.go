package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/engine"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval time.Duration
	Once     bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scan, analyze and reclaim cycles on a schedule",
		Long: `Start the bot loop: every interval, one full cycle of scan, analyze and
reclaim runs against the configured treasury. Cycles never overlap; a
failed cycle is logged and the loop carries on.

Whether cycles reclaim for real or only simulate follows the configured
dry_run setting. The loop stops cleanly on SIGINT or SIGTERM.

Example:
  rentreclaim run --config kora.yaml
  rentreclaim run --interval 5m --once`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "time between cycles (default: config interval)")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "run a single cycle and exit")

	return cmd
}

func runLoop(opts *RunOptions, cmd *cobra.Command) error {
	log := setupLogging(opts.RootOptions)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	treasury, err := requireTreasury(cfg)
	if err != nil {
		return err
	}

	slog.Info("opening database", "path", cfg.DatabasePath)
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
	if !cfg.DryRun {
		broadcaster, err = newBroadcaster(cfg, log)
		if err != nil {
			return err
		}
	}

	scanner := engine.NewScanner(st, client, log)
	analyzer := engine.NewAnalyzer(st, client, log)
	reclaimer := engine.NewReclaimer(st, client, broadcaster, newNotifier(cfg), treasury, log)
	cycle := engine.NewCycle(scanner, analyzer, reclaimer, treasury, cfg.ScanLimit, cfg.DryRun, log)

	interval := opts.Interval
	if interval <= 0 {
		interval = cfg.Interval
	}

	// Setup signal handling for graceful shutdown.
	// Use command's context if available (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.Once {
		if err := cycle.RunOnce(ctx); err != nil {
			return WrapExitError(ExitFailure, "cycle failed", err)
		}
		return nil
	}

	slog.Info("starting bot loop",
		"network", string(cfg.Network),
		"treasury", treasury.String(),
		"interval", interval.String(),
		"dry_run", cfg.DryRun,
	)
	err = cycle.RunEvery(ctx, interval)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "bot loop failed", err)
	}
	slog.Info("bot loop stopped")
	return nil
}
