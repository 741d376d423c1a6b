package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// Scanner discovers sponsor-funded account creations from the treasury's
// recent finalized transaction history and registers them in the store.
// It only ever grows the store; existing rows are never mutated here, and no
// eligibility judgment is made at this stage.
type Scanner struct {
	store *store.Store
	chain chain.Client
	log   *slog.Logger
}

// NewScanner creates a scanner over the given store and chain client.
func NewScanner(st *store.Store, client chain.Client, log *slog.Logger) *Scanner {
	return &Scanner{store: st, chain: client, log: log}
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	Signatures  int `json:"signatures"`
	Discovered  int `json:"discovered"`
	Skipped     int `json:"skipped"`
	ParseErrors int `json:"parse_errors"`
}

// Scan walks up to limit recent finalized transactions of the sponsor
// treasury, newest first, and registers every create-account effect whose
// fee payer is the treasury. Registration is idempotent: re-discovering a
// known pubkey is a no-op.
//
// Unless full is set, the walk stops at the previous scan's checkpoint
// signature, which is advanced to the newest signature on success. Malformed
// transactions are logged and skipped individually; one bad transaction
// never aborts the scan.
func (s *Scanner) Scan(ctx context.Context, treasury solana.PublicKey, limit int, full bool) (ScanResult, error) {
	var result ScanResult

	var until solana.Signature
	if !full {
		checkpoint, err := s.store.LastScanSignature(ctx)
		if err != nil {
			return result, fmt.Errorf("scan: %w", err)
		}
		if checkpoint != "" {
			sig, err := solana.SignatureFromBase58(checkpoint)
			if err != nil {
				// A corrupt checkpoint falls back to a full walk.
				s.log.Warn("invalid scan checkpoint, ignoring", "checkpoint", checkpoint, "error", err)
			} else {
				until = sig
			}
		}
	}

	sigs, err := s.chain.SignaturesForAddress(ctx, treasury, limit, until)
	if err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}
	result.Signatures = len(sigs)

	for _, sigInfo := range sigs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if sigInfo.Failed {
			result.Skipped++
			continue
		}

		tx, err := s.chain.Transaction(ctx, sigInfo.Signature)
		if err != nil {
			// Transient fetch and parse failures alike: skip this one
			// transaction, keep scanning.
			s.log.Error("skipping transaction", "signature", sigInfo.Signature, "error", err)
			result.ParseErrors++
			continue
		}

		if !tx.FeePayer.Equals(treasury) {
			result.Skipped++
			continue
		}

		for _, create := range tx.Creates {
			inserted, err := s.store.InsertAccount(ctx, store.Account{
				Pubkey:         create.NewAccount.String(),
				OwnerProgram:   create.Owner.String(),
				FundedLamports: create.Lamports,
				CreationSlot:   tx.Slot,
			})
			if err != nil {
				return result, fmt.Errorf("scan: %w", err)
			}
			if inserted {
				result.Discovered++
				s.log.Info("sponsored account discovered",
					"account", create.NewAccount,
					"owner", create.Owner,
					"lamports", create.Lamports,
					"slot", tx.Slot,
				)
			}
		}
	}

	if len(sigs) > 0 {
		// Newest-first order: the first signature is the new checkpoint.
		if err := s.store.SaveScanSignature(ctx, sigs[0].Signature.String()); err != nil {
			return result, fmt.Errorf("scan: %w", err)
		}
	}

	s.log.Info("scan complete",
		"signatures", result.Signatures,
		"discovered", result.Discovered,
		"skipped", result.Skipped,
		"parse_errors", result.ParseErrors,
	)
	return result, nil
}
