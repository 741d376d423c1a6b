package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// Guaranteed-valid base58 pubkeys for tests.
var (
	testTreasury  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testAcctA     = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	testAcctB     = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	testAuthority = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	testOther     = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
)

const (
	sysProgram   = "11111111111111111111111111111111"
	tokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeChain is an in-memory chain.Client.
type fakeChain struct {
	sigs    []chain.SignatureInfo
	sigsErr error

	txs    map[solana.Signature]*chain.TransactionDetail
	txErrs map[solana.Signature]error

	accounts    map[solana.PublicKey]*chain.AccountInfo
	accountErrs map[solana.PublicKey]error

	slot    uint64
	slotErr error

	rent map[uint64]uint64

	gotLimit int
	gotUntil solana.Signature
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		txs:         map[solana.Signature]*chain.TransactionDetail{},
		txErrs:      map[solana.Signature]error{},
		accounts:    map[solana.PublicKey]*chain.AccountInfo{},
		accountErrs: map[solana.PublicKey]error{},
		rent:        map[uint64]uint64{},
	}
}

func (f *fakeChain) SignaturesForAddress(_ context.Context, _ solana.PublicKey, limit int, until solana.Signature) ([]chain.SignatureInfo, error) {
	f.gotLimit = limit
	f.gotUntil = until
	return f.sigs, f.sigsErr
}

func (f *fakeChain) Transaction(_ context.Context, sig solana.Signature) (*chain.TransactionDetail, error) {
	if err := f.txErrs[sig]; err != nil {
		return nil, err
	}
	return f.txs[sig], nil
}

func (f *fakeChain) AccountInfo(_ context.Context, addr solana.PublicKey) (*chain.AccountInfo, error) {
	if err := f.accountErrs[addr]; err != nil {
		return nil, err
	}
	return f.accounts[addr], nil
}

func (f *fakeChain) CurrentSlot(context.Context) (uint64, error) {
	return f.slot, f.slotErr
}

func (f *fakeChain) MinimumRentExemption(_ context.Context, dataSize uint64) (uint64, error) {
	return f.rent[dataSize], nil
}

// sigN builds a deterministic fake signature.
func sigN(n byte) solana.Signature {
	var sig solana.Signature
	sig[0] = n
	return sig
}

// fakeBroadcaster records submitted instructions.
type fakeBroadcaster struct {
	sig       solana.Signature
	err       error
	submitted []solana.Instruction
}

func (f *fakeBroadcaster) SignAndSubmit(_ context.Context, ix solana.Instruction) (solana.Signature, error) {
	if f.err != nil {
		return solana.Signature{}, f.err
	}
	f.submitted = append(f.submitted, ix)
	return f.sig, nil
}

func (f *fakeBroadcaster) Authority() solana.PublicKey { return testAuthority }

// recordingNotifier captures alert messages.
type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Send(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return nil
}
