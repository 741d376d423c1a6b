package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPubkey = "7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj"
	testOwner  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func testAccount() Account {
	return Account{
		Pubkey:         testPubkey,
		OwnerProgram:   testOwner,
		FundedLamports: 2_039_280,
		CreationSlot:   100,
	}
}

func TestInsertAccount_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	inserted, err := s.InsertAccount(ctx, testAccount())
	require.NoError(t, err)
	assert.True(t, inserted)

	// Re-discovering the same pubkey is a no-op, not an update.
	dup := testAccount()
	dup.FundedLamports = 999
	dup.CreationSlot = 200
	inserted, err = s.InsertAccount(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, uint64(2_039_280), accounts[0].FundedLamports)
	assert.Equal(t, uint64(100), accounts[0].CreationSlot)
	assert.Equal(t, testOwner, accounts[0].OwnerProgramAtCreation)
}

func TestInsertAccount_SeedsObservedBalance(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.InsertAccount(ctx, testAccount())
	require.NoError(t, err)

	acc, ok, err := s.GetAccount(ctx, testPubkey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2_039_280), acc.Lamports)
	assert.Nil(t, acc.LastActivitySlot)
	assert.False(t, acc.Closed)
	assert.False(t, acc.CreatedAt.IsZero())
}

func TestGetAccount_Missing(t *testing.T) {
	s := testStore(t)

	_, ok, err := s.GetAccount(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateObserved(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.InsertAccount(ctx, testAccount())
	require.NoError(t, err)

	err = s.UpdateObserved(ctx, testPubkey, "11111111111111111111111111111111", true, 42, 1_000)
	require.NoError(t, err)

	acc, _, err := s.GetAccount(ctx, testPubkey)
	require.NoError(t, err)
	assert.Equal(t, "11111111111111111111111111111111", acc.OwnerProgram)
	assert.True(t, acc.Executable)
	assert.Equal(t, uint64(42), acc.DataSize)
	assert.Equal(t, uint64(1_000), acc.Lamports)
	// Funding facts stay frozen.
	assert.Equal(t, testOwner, acc.OwnerProgramAtCreation)
	assert.Equal(t, uint64(2_039_280), acc.FundedLamports)
}

func TestUpdateActivity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.InsertAccount(ctx, testAccount())
	require.NoError(t, err)

	err = s.UpdateActivity(ctx, testPubkey, 20_200)
	require.NoError(t, err)

	acc, _, err := s.GetAccount(ctx, testPubkey)
	require.NoError(t, err)
	require.NotNil(t, acc.LastActivitySlot)
	assert.Equal(t, uint64(20_200), *acc.LastActivitySlot)
}

func TestMarkClosed_Monotonic(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.InsertAccount(ctx, testAccount())
	require.NoError(t, err)

	require.NoError(t, s.MarkClosed(ctx, testPubkey))

	acc, _, err := s.GetAccount(ctx, testPubkey)
	require.NoError(t, err)
	assert.True(t, acc.Closed)

	// Closed accounts are excluded from the open set and immune to
	// observed-state updates.
	open, err := s.ListOpenAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	require.NoError(t, s.UpdateObserved(ctx, testPubkey, testOwner, false, 7, 7))
	require.NoError(t, s.UpdateActivity(ctx, testPubkey, 999))

	acc, _, err = s.GetAccount(ctx, testPubkey)
	require.NoError(t, err)
	assert.True(t, acc.Closed)
	assert.Equal(t, uint64(2_039_280), acc.Lamports)
	assert.Nil(t, acc.LastActivitySlot)
}

func TestListOpenAccounts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testAccount()
	b := testAccount()
	b.Pubkey = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	_, err := s.InsertAccount(ctx, a)
	require.NoError(t, err)
	_, err = s.InsertAccount(ctx, b)
	require.NoError(t, err)
	require.NoError(t, s.MarkClosed(ctx, a.Pubkey))

	open, err := s.ListOpenAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b.Pubkey, open[0].Pubkey)

	all, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
