// Package chain is the thin adapter layer over Solana RPC. It exposes the
// narrow read interface the core consumes (signatures, transactions, account
// info, slot) plus the signing/broadcast boundary, keeping the rest of the
// system free of SDK types beyond pubkeys and signatures.
package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the observed on-chain state of a single account.
type AccountInfo struct {
	Owner      solana.PublicKey
	Lamports   uint64
	DataSize   uint64
	Executable bool
}

// SignatureInfo identifies one historical transaction of an address.
type SignatureInfo struct {
	Signature solana.Signature
	Slot      uint64
	Failed    bool
}

// CreateAccountEvent is one system-program create-account effect extracted
// from a transaction.
type CreateAccountEvent struct {
	NewAccount solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Space      uint64
}

// TransactionDetail is the decoded view of a transaction the scanner needs:
// who paid the fee, at which slot, and which accounts it created.
type TransactionDetail struct {
	Slot     uint64
	FeePayer solana.PublicKey
	Creates  []CreateAccountEvent
}

// Client is the read-only RPC surface the core consumes. Implementations
// must use finalized commitment so the scanner never registers accounts from
// transactions that can still be rolled back.
type Client interface {
	// SignaturesForAddress returns up to limit recent finalized transaction
	// signatures for addr, newest first. A non-zero until signature bounds
	// the walk: only signatures newer than it are returned.
	SignaturesForAddress(ctx context.Context, addr solana.PublicKey, limit int, until solana.Signature) ([]SignatureInfo, error)

	// Transaction fetches and decodes one transaction. A decode failure is
	// returned as an error; callers treat it as a parse failure and skip.
	Transaction(ctx context.Context, sig solana.Signature) (*TransactionDetail, error)

	// AccountInfo returns the current state of addr, or (nil, nil) when the
	// account does not exist on-chain (closed or purged).
	AccountInfo(ctx context.Context, addr solana.PublicKey) (*AccountInfo, error)

	// CurrentSlot returns the current finalized slot.
	CurrentSlot(ctx context.Context) (uint64, error)

	// MinimumRentExemption returns the minimum balance an account of the
	// given data size needs to be rent exempt.
	MinimumRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
}

// Broadcaster is the external signing/broadcast boundary. The orchestrator
// never signs anything itself; when no Broadcaster is configured, live
// reclaim degrades to a warn-and-skip.
type Broadcaster interface {
	// SignAndSubmit signs the instruction with the operator authority,
	// submits it, and blocks until finalized confirmation or failure.
	SignAndSubmit(ctx context.Context, ix solana.Instruction) (solana.Signature, error)

	// Authority returns the signing authority's public key.
	Authority() solana.PublicKey
}
