package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

// SPL Token close_account instruction tag, identical in Token and
// Token-2022.
const tokenInstructionCloseAccount = 9

const (
	confirmPollInterval = 2 * time.Second
	confirmTimeout      = 90 * time.Second
)

// ReclaimInstruction builds the instruction that returns an account's
// lamports to the sponsor treasury: a token close for SPL token accounts, a
// full balance transfer for system-owned accounts.
func ReclaimInstruction(class ProgramClass, account, treasury, authority solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	switch {
	case class.Closable():
		return solana.NewInstruction(
			class.ProgramID(),
			solana.AccountMetaSlice{
				solana.Meta(account).WRITE(),
				solana.Meta(treasury).WRITE(),
				solana.Meta(authority).SIGNER(),
			},
			[]byte{tokenInstructionCloseAccount},
		), nil
	case class == ProgramSystem:
		return system.NewTransferInstruction(lamports, account, treasury).Build(), nil
	default:
		return nil, fmt.Errorf("reclaim instruction: no close support for %s program", class)
	}
}

// Signer implements Broadcaster with a locally held operator key.
type Signer struct {
	rpc *rpc.Client
	key solana.PrivateKey
}

// NewSigner creates a Broadcaster that signs with key and submits through
// the given RPC endpoint.
func NewSigner(endpoint string, key solana.PrivateKey) *Signer {
	return &Signer{rpc: rpc.New(endpoint), key: key}
}

// Authority returns the operator's public key.
func (s *Signer) Authority() solana.PublicKey {
	return s.key.PublicKey()
}

// SignAndSubmit signs the instruction with the operator key, submits it, and
// polls signature status until finalized. Returns the transaction signature
// only after confirmed success.
func (s *Signer) SignAndSubmit(ctx context.Context, ix solana.Instruction) (solana.Signature, error) {
	recent, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(s.key.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err := s.awaitFinalized(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

// awaitFinalized polls the signature status until it reaches finalized
// commitment, the transaction fails, or the timeout elapses.
func (s *Signer) awaitFinalized(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(confirmTimeout)
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		res, err := s.rpc.GetSignatureStatuses(ctx, true, sig)
		if err == nil && res != nil && len(res.Value) > 0 && res.Value[0] != nil {
			st := res.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", sig, st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not finalized after %s", sig, confirmTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LoadOperatorKey loads the operator private key from a Solana keygen file.
func LoadOperatorKey(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load operator key %s: %w", path, err)
	}
	return key, nil
}
