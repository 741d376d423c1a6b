package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient implements Client on top of the solana-go JSON-RPC client.
// All queries use finalized commitment.
type RPCClient struct {
	rpc *rpc.Client
}

// NewRPCClient creates a client for the given RPC endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{rpc: rpc.New(endpoint)}
}

// SignaturesForAddress returns up to limit recent finalized signatures for
// addr, newest first, bounded below by until when non-zero.
func (c *RPCClient) SignaturesForAddress(ctx context.Context, addr solana.PublicKey, limit int, until solana.Signature) ([]SignatureInfo, error) {
	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	}
	if !until.IsZero() {
		opts.Until = until
	}
	sigs, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, addr, opts)
	if err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", addr, err)
	}

	out := make([]SignatureInfo, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, SignatureInfo{
			Signature: s.Signature,
			Slot:      s.Slot,
			Failed:    s.Err != nil,
		})
	}
	return out, nil
}

// Transaction fetches one transaction and decodes its fee payer and
// create-account effects.
func (c *RPCClient) Transaction(ctx context.Context, sig solana.Signature) (*TransactionDetail, error) {
	maxVersion := uint64(0)
	res, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", sig, err)
	}
	if res == nil || res.Transaction == nil {
		return nil, fmt.Errorf("get transaction %s: empty result", sig)
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", sig, err)
	}
	payer, err := FeePayer(tx)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", sig, err)
	}
	creates, err := ParseCreateAccounts(tx)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", sig, err)
	}

	return &TransactionDetail{
		Slot:     res.Slot,
		FeePayer: payer,
		Creates:  creates,
	}, nil
}

// AccountInfo returns the account's current state, or (nil, nil) when the
// account no longer exists on-chain.
func (c *RPCClient) AccountInfo(ctx context.Context, addr solana.PublicKey) (*AccountInfo, error) {
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		// The SDK reports a missing account as an error, not an empty value.
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account info %s: %w", addr, err)
	}
	if res == nil || res.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Owner:      res.Value.Owner,
		Lamports:   res.Value.Lamports,
		Executable: res.Value.Executable,
	}
	if res.Value.Data != nil {
		info.DataSize = uint64(len(res.Value.Data.GetBinary()))
	}
	return info, nil
}

// CurrentSlot returns the current finalized slot.
func (c *RPCClient) CurrentSlot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// MinimumRentExemption returns the rent-exempt minimum for dataSize bytes.
func (c *RPCClient) MinimumRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	min, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("get rent exemption for %d bytes: %w", dataSize, err)
	}
	return min, nil
}
