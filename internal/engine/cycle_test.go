package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kora-labs/rent-reclaim/internal/chain"
)

func newTestCycle(t *testing.T, fc *fakeChain, dryRun bool) *Cycle {
	t.Helper()
	st := testStore(t)
	log := testLogger()
	return NewCycle(
		NewScanner(st, fc, log),
		NewAnalyzer(st, fc, log),
		NewReclaimer(st, fc, nil, nil, testTreasury, log),
		testTreasury,
		100,
		dryRun,
		log,
	)
}

func TestCycle_RunOnce(t *testing.T) {
	fc := newFakeChain()
	fc.slot = 20_200
	fc.sigs = []chain.SignatureInfo{{Signature: sigN(1), Slot: 100}}
	fc.txs[sigN(1)] = &chain.TransactionDetail{
		Slot:     100,
		FeePayer: testTreasury,
		Creates: []chain.CreateAccountEvent{
			{NewAccount: testAcctA, Owner: testOther, Lamports: 1_000_000},
		},
	}
	fc.accounts[testAcctA] = &chain.AccountInfo{Owner: testOther, Lamports: 1_000_000, DataSize: 64}

	c := newTestCycle(t, fc, true)
	require.NoError(t, c.RunOnce(context.Background()))
}

func TestCycle_RunEveryStopsOnCancel(t *testing.T) {
	fc := newFakeChain()
	fc.slot = 20_200

	c := newTestCycle(t, fc, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.RunEvery(ctx, 10*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("RunEvery did not stop after cancellation")
	}
}
