package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Cycle drives one scan -> analyze -> reclaim sequence. Cycles never
// overlap: RunEvery starts the next cycle only after the previous one has
// fully completed or failed, so no reclaim can ever race a stale snapshot.
type Cycle struct {
	scanner   *Scanner
	analyzer  *Analyzer
	reclaimer *Reclaimer
	log       *slog.Logger

	treasury  solana.PublicKey
	scanLimit int
	dryRun    bool
}

// NewCycle wires the three stages into a driver.
func NewCycle(scanner *Scanner, analyzer *Analyzer, reclaimer *Reclaimer, treasury solana.PublicKey, scanLimit int, dryRun bool, log *slog.Logger) *Cycle {
	return &Cycle{
		scanner:   scanner,
		analyzer:  analyzer,
		reclaimer: reclaimer,
		log:       log,
		treasury:  treasury,
		scanLimit: scanLimit,
		dryRun:    dryRun,
	}
}

// RunOnce executes a single full cycle. Stage failures abort the cycle; a
// cancelled context aborts between account-level steps without corrupting
// state, since every per-account mutation is atomic and independent.
func (c *Cycle) RunOnce(ctx context.Context) error {
	log := c.log.With("cycle", uuid.NewString())
	start := time.Now()
	log.Info("cycle starting", "dry_run", c.dryRun)

	if _, err := c.scanner.Scan(ctx, c.treasury, c.scanLimit, false); err != nil {
		return err
	}
	if _, err := c.analyzer.Analyze(ctx); err != nil {
		return err
	}
	if _, err := c.reclaimer.ReclaimAll(ctx, c.dryRun); err != nil {
		return err
	}

	log.Info("cycle complete", "elapsed", time.Since(start))
	return nil
}

// RunEvery runs cycles on a fixed interval until the context is cancelled.
// A failed cycle is logged and the next one still runs; overlap is
// impossible by construction since each cycle finishes before the next
// tick is considered.
func (c *Cycle) RunEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
