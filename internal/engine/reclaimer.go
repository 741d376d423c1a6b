package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/kora-labs/rent-reclaim/internal/alert"
	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// Reclaimer is the reclaim orchestrator. It layers the protection override
// and the execution machinery on top of the pure eligibility function:
// consulting protections, building snapshots, executing or simulating the
// reclaim, recording the outcome in the audit log, and alerting.
type Reclaimer struct {
	store       *store.Store
	chain       chain.Client
	broadcaster chain.Broadcaster // nil when no signing authority is configured
	notifier    alert.Notifier
	treasury    solana.PublicKey
	log         *slog.Logger
}

// NewReclaimer creates the orchestrator. broadcaster may be nil, in which
// case live reclaim degrades to a warn-and-skip per account.
func NewReclaimer(st *store.Store, client chain.Client, broadcaster chain.Broadcaster, notifier alert.Notifier, treasury solana.PublicKey, log *slog.Logger) *Reclaimer {
	if notifier == nil {
		notifier = alert.Nop{}
	}
	return &Reclaimer{
		store:       st,
		chain:       client,
		broadcaster: broadcaster,
		notifier:    notifier,
		treasury:    treasury,
		log:         log,
	}
}

// ReclaimResult summarizes one orchestrator pass.
type ReclaimResult struct {
	Evaluated int `json:"evaluated"`
	Protected int `json:"protected"`
	Skipped   int `json:"skipped"`
	DryRuns   int `json:"dry_runs"`
	Reclaimed int `json:"reclaimed"`
	Failed    int `json:"failed"`
}

// ReclaimAll evaluates every open tracked account and executes (or
// simulates, in dry-run mode) the reclaim for the eligible ones. Account
// order carries no semantic weight. Per-account failures are logged and
// skip that account only.
func (r *Reclaimer) ReclaimAll(ctx context.Context, dryRun bool) (ReclaimResult, error) {
	var result ReclaimResult

	accounts, err := r.store.ListOpenAccounts(ctx)
	if err != nil {
		return result, fmt.Errorf("reclaim: %w", err)
	}

	currentSlot, err := r.chain.CurrentSlot(ctx)
	if err != nil {
		return result, fmt.Errorf("reclaim: %w", err)
	}

	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.reclaimOne(ctx, acc, currentSlot, dryRun, &result); err != nil {
			return result, err
		}
	}

	r.log.Info("reclaim pass complete",
		"dry_run", dryRun,
		"evaluated", result.Evaluated,
		"protected", result.Protected,
		"skipped", result.Skipped,
		"dry_runs", result.DryRuns,
		"reclaimed", result.Reclaimed,
		"failed", result.Failed,
	)
	return result, nil
}

// ReclaimOne evaluates and reclaims a single tracked account by pubkey.
func (r *Reclaimer) ReclaimOne(ctx context.Context, pubkey string, dryRun bool) (ReclaimResult, error) {
	var result ReclaimResult

	acc, ok, err := r.store.GetAccount(ctx, pubkey)
	if err != nil {
		return result, fmt.Errorf("reclaim %s: %w", pubkey, err)
	}
	if !ok {
		return result, fmt.Errorf("reclaim %s: account is not tracked", pubkey)
	}
	if acc.Closed {
		// Terminal state: permanently excluded from reclaim.
		r.log.Info("skip: account already closed", "account", pubkey)
		result.Skipped++
		return result, nil
	}

	currentSlot, err := r.chain.CurrentSlot(ctx)
	if err != nil {
		return result, fmt.Errorf("reclaim %s: %w", pubkey, err)
	}

	if err := r.reclaimOne(ctx, acc, currentSlot, dryRun, &result); err != nil {
		return result, err
	}
	return result, nil
}

// reclaimOne runs the per-account orchestration: protection override first,
// then eligibility, then the dry-run or live execution path. Only store
// errors propagate; chain-level failures are logged and counted.
func (r *Reclaimer) reclaimOne(ctx context.Context, acc store.Account, currentSlot uint64, dryRun bool, result *ReclaimResult) error {
	protected, err := r.store.IsProtected(ctx, acc.Pubkey)
	if err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}
	if protected {
		// Unconditional override: no eligibility evaluation, no audit record.
		r.log.Info("skip: account protected", "account", acc.Pubkey)
		result.Protected++
		return nil
	}

	result.Evaluated++
	decision := Decide(NewSnapshot(acc, currentSlot))
	if !decision.Eligible {
		r.log.Info("skip: not eligible", "account", acc.Pubkey, "reason", decision.Reason)
		result.Skipped++
		return nil
	}

	// The recorded balance is what a reclaim would return; fall back to the
	// funded amount when no balance has been observed yet.
	amount := acc.Lamports
	if amount == 0 {
		amount = acc.FundedLamports
	}

	if dryRun {
		r.log.Info("dry-run: would reclaim",
			"account", acc.Pubkey,
			"lamports", amount,
			"reason", decision.Reason,
		)
		if err := r.store.AppendReclaim(ctx, store.ReclaimRecord{
			Pubkey:            acc.Pubkey,
			ReclaimedLamports: amount,
			Reason:            decision.Reason,
			DryRun:            true,
		}); err != nil {
			return fmt.Errorf("reclaim: %w", err)
		}
		result.DryRuns++
		return nil
	}

	if decision.Reason == ReasonAlreadyClosed {
		// Defensive no-op: closed accounts are filtered out before
		// evaluation, so this branch only fires on a stale snapshot. There
		// is nothing left on-chain to reclaim.
		r.log.Info("skip: eligible but already closed, no chain action", "account", acc.Pubkey)
		result.Skipped++
		return nil
	}

	if r.broadcaster == nil {
		r.log.Warn("skip: no signing authority configured for live reclaim", "account", acc.Pubkey)
		result.Skipped++
		return nil
	}

	return r.execute(ctx, acc, amount, decision.Reason, result)
}

// execute submits the reclaim transaction and, only after confirmed
// success, transitions the account to closed and appends the audit record.
// On submission failure the account remains open and untouched; the next
// cycle re-evaluates it from scratch.
func (r *Reclaimer) execute(ctx context.Context, acc store.Account, amount uint64, reason string, result *ReclaimResult) error {
	account, err := solana.PublicKeyFromBase58(acc.Pubkey)
	if err != nil {
		r.log.Error("invalid account pubkey", "account", acc.Pubkey, "error", err)
		result.Failed++
		return nil
	}

	class := chain.ClassifyBase58(acc.OwnerProgram)
	ix, err := chain.ReclaimInstruction(class, account, r.treasury, r.broadcaster.Authority(), amount)
	if err != nil {
		r.log.Error("cannot build reclaim instruction", "account", acc.Pubkey, "error", err)
		result.Failed++
		return nil
	}

	sig, err := r.broadcaster.SignAndSubmit(ctx, ix)
	if err != nil {
		r.log.Error("reclaim submission failed", "account", acc.Pubkey, "error", err)
		result.Failed++
		return nil
	}

	if err := r.store.MarkClosed(ctx, acc.Pubkey); err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}
	if err := r.store.AppendReclaim(ctx, store.ReclaimRecord{
		Pubkey:            acc.Pubkey,
		ReclaimedLamports: amount,
		Reason:            reason,
		TxSignature:       sig.String(),
	}); err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}
	result.Reclaimed++

	r.log.Info("reclaimed",
		"account", acc.Pubkey,
		"lamports", amount,
		"signature", sig,
		"reason", reason,
	)

	// Best effort: a failed notification never fails the reclaim.
	msg := fmt.Sprintf("Reclaimed %d lamports from %s (%s). Signature: %s", amount, acc.Pubkey, reason, sig)
	if err := r.notifier.Send(ctx, msg); err != nil {
		r.log.Warn("alert delivery failed", "error", err)
	}

	return nil
}
