package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// Analyzer refreshes the observed on-chain state of every open tracked
// account and detects closures.
type Analyzer struct {
	store *store.Store
	chain chain.Client
	log   *slog.Logger
}

// NewAnalyzer creates an analyzer over the given store and chain client.
func NewAnalyzer(st *store.Store, client chain.Client, log *slog.Logger) *Analyzer {
	return &Analyzer{store: st, chain: client, log: log}
}

// AnalyzeResult summarizes one analyze pass.
type AnalyzeResult struct {
	Checked int `json:"checked"`
	Closed  int `json:"closed"`
	Active  int `json:"active"`
	Failed  int `json:"failed"`
}

// Analyze fetches current on-chain attributes for every tracked, non-closed
// account. An account that no longer exists transitions to the terminal
// closed state. Otherwise its observed fields are overwritten, and
// last_activity_slot advances to the current slot when the balance differs
// from the last-recorded balance - balance change is the only liveness
// signal used, accepted imprecision included.
//
// A fetch failure for one account leaves that account unchanged for this
// cycle and the loop continues.
func (a *Analyzer) Analyze(ctx context.Context) (AnalyzeResult, error) {
	var result AnalyzeResult

	accounts, err := a.store.ListOpenAccounts(ctx)
	if err != nil {
		return result, fmt.Errorf("analyze: %w", err)
	}

	currentSlot, err := a.chain.CurrentSlot(ctx)
	if err != nil {
		return result, fmt.Errorf("analyze: %w", err)
	}

	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		pubkey, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			a.log.Error("skipping account with invalid pubkey", "account", acc.Pubkey, "error", err)
			result.Failed++
			continue
		}

		info, err := a.chain.AccountInfo(ctx, pubkey)
		if err != nil {
			a.log.Error("account fetch failed, leaving unchanged", "account", acc.Pubkey, "error", err)
			result.Failed++
			continue
		}

		if info == nil {
			// Gone on-chain: terminal transition, never revisited.
			if err := a.store.MarkClosed(ctx, acc.Pubkey); err != nil {
				return result, fmt.Errorf("analyze: %w", err)
			}
			result.Closed++
			a.log.Info("account closed on-chain", "account", acc.Pubkey)
			continue
		}

		balanceChanged := info.Lamports != acc.Lamports

		if err := a.store.UpdateObserved(ctx, acc.Pubkey, info.Owner.String(), info.Executable, info.DataSize, info.Lamports); err != nil {
			return result, fmt.Errorf("analyze: %w", err)
		}
		if balanceChanged {
			if err := a.store.UpdateActivity(ctx, acc.Pubkey, currentSlot); err != nil {
				return result, fmt.Errorf("analyze: %w", err)
			}
			result.Active++
		}

		a.log.Debug("account refreshed",
			"account", acc.Pubkey,
			"owner", info.Owner,
			"executable", info.Executable,
			"data_size", info.DataSize,
			"lamports", info.Lamports,
			"balance_changed", balanceChanged,
		)
	}

	a.log.Info("analyze complete",
		"checked", result.Checked,
		"closed", result.Closed,
		"active", result.Active,
		"failed", result.Failed,
	)
	return result, nil
}
