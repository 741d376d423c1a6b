package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendReclaim_AppendOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendReclaim(ctx, ReclaimRecord{
		Pubkey:            testPubkey,
		ReclaimedLamports: 1_000_000,
		Reason:            "system-owned empty account",
		DryRun:            true,
	}))
	require.NoError(t, s.AppendReclaim(ctx, ReclaimRecord{
		Pubkey:            testPubkey,
		ReclaimedLamports: 1_000_000,
		Reason:            "system-owned empty account",
		TxSignature:       "5fAke51gnature",
	}))

	records, err := s.ListReclaims(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].DryRun)
	assert.Empty(t, records[0].TxSignature)
	assert.False(t, records[1].DryRun)
	assert.Equal(t, "5fAke51gnature", records[1].TxSignature)
	assert.Greater(t, records[1].ID, records[0].ID)
	for _, rec := range records {
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestTotalReclaimed_ExcludesDryRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	total, err := s.TotalReclaimed(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, s.AppendReclaim(ctx, ReclaimRecord{Pubkey: "a", ReclaimedLamports: 300, Reason: "x", DryRun: true}))
	require.NoError(t, s.AppendReclaim(ctx, ReclaimRecord{Pubkey: "b", ReclaimedLamports: 100, Reason: "x", TxSignature: "s1"}))
	require.NoError(t, s.AppendReclaim(ctx, ReclaimRecord{Pubkey: "c", ReclaimedLamports: 250, Reason: "x", TxSignature: "s2"}))

	total, err = s.TotalReclaimed(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), total)
}
