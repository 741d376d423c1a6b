package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kora-labs/rent-reclaim/internal/store"
)

func TestBuildReport_Totals(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedAccount(t, st, testAcctA, sysProgram, 1_000_000)
	seedAccount(t, st, testAcctB, tokenProgram, 2_039_280)
	require.NoError(t, st.MarkClosed(ctx, testAcctB.String()))

	_, err := st.Protect(ctx, testAcctA.String(), "keep")
	require.NoError(t, err)

	require.NoError(t, st.AppendReclaim(ctx, store.ReclaimRecord{
		Pubkey: testAcctB.String(), ReclaimedLamports: 2_039_280, Reason: "known closable program", TxSignature: "sig",
	}))
	require.NoError(t, st.AppendReclaim(ctx, store.ReclaimRecord{
		Pubkey: testAcctA.String(), ReclaimedLamports: 1_000_000, Reason: "system-owned empty account", DryRun: true,
	}))

	rep, err := BuildReport(ctx, st, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, uint64(3_039_280), rep.TotalLocked)
	assert.Equal(t, uint64(2_039_280), rep.TotalReclaimed, "dry runs never count as reclaimed")
	assert.Equal(t, 1, rep.OpenAccounts)
	assert.Equal(t, 1, rep.ClosedAccounts)
	assert.Equal(t, 1, rep.ProtectedAccounts)
	assert.Equal(t, uint64(3_039_280), rep.IdleUnder30d)
	assert.False(t, rep.RentChecked)
}

func TestBuildReport_AgeBuckets(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	seedAccount(t, st, testAcctA, sysProgram, 1_000_000)

	accounts, err := st.ListAccounts(ctx)
	require.NoError(t, err)
	created := accounts[0].CreatedAt

	rep, err := BuildReport(ctx, st, nil, created.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), rep.IdleUnder30d)

	rep, err = BuildReport(ctx, st, nil, created.Add(40*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), rep.Idle30to90d)

	rep, err = BuildReport(ctx, st, nil, created.Add(100*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), rep.IdleOver90d)
}

func TestBuildReport_RentExemptionCheck(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	fc := newFakeChain()
	fc.rent[0] = 890_880

	// Funded below the rent-exempt minimum for zero data.
	seedAccount(t, st, testAcctA, sysProgram, 500_000)
	seedAccount(t, st, testAcctB, sysProgram, 1_000_000)

	rep, err := BuildReport(ctx, st, fc, time.Now())
	require.NoError(t, err)
	assert.True(t, rep.RentChecked)
	assert.Equal(t, 1, rep.BelowRentExempt)
}

func TestReportRender_Golden(t *testing.T) {
	rep := Report{
		TotalLocked:       3_039_280,
		TotalReclaimed:    1_000_000,
		IdleUnder30d:      2_039_280,
		Idle30to90d:       1_000_000,
		IdleOver90d:       0,
		OpenAccounts:      1,
		ClosedAccounts:    1,
		ProtectedAccounts: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf))

	g := goldie.New(t)
	g.Assert(t, "report_render", buf.Bytes())
}

func TestReportRender_WithRentCheck(t *testing.T) {
	rep := Report{RentChecked: true, BelowRentExempt: 2}

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf))
	assert.Contains(t, buf.String(), "Below rent exemption:  2")
}
