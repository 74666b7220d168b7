package redis

import (
	"context"
	"math/big"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootledger/ledger"
	"rootledger/types"
)

// setupTestStore connects to REDIS_ADDR, tests are skipped without it
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	store := New(host, port)
	require.NoError(t, store.Ping(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AccountRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	missing, err := store.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.NoError(t, store.SaveAccount(ctx, &types.Account{ID: id, Token: "t", Holder: "h", Balance: huge}))

	got, err := store.GetAccount(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, huge.String(), got.Balance.String())
}

func TestStore_CreateTransferOnce(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, store.CreateTransfer(ctx, &types.Transfer{ID: id, Amount: big.NewInt(1)}))
	err := store.CreateTransfer(ctx, &types.Transfer{ID: id, Amount: big.NewInt(2)})
	assert.ErrorIs(t, err, ledger.ErrDuplicateKey)

	got, err := store.GetTransfer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Amount.String())
}

func TestStore_CrossChainListing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, store.CreateCrossChainTransfer(ctx, &types.CrossChainTransfer{ID: id, FromRoot: true, Amount: big.NewInt(3)}))

	all, err := store.CrossChainTransfers(ctx)
	require.NoError(t, err)

	var found bool
	for _, xc := range all {
		if xc.ID == id {
			found = true
			assert.True(t, xc.FromRoot)
		}
	}
	assert.True(t, found)
}

func TestStore_ScannedBlock(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	chainID := int64(900000 + uuid.New().ID()%1000)

	block, err := store.GetEVMScannedBlock(ctx, chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), block)

	require.NoError(t, store.SetEVMScannedBlock(ctx, chainID, 42))
	block, err = store.GetEVMScannedBlock(ctx, chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), block)
}

func TestStore_CommitDuplicateWritesNothing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, store.CreateTransfer(ctx, &types.Transfer{ID: id, Amount: big.NewInt(1)}))

	err := store.Commit(ctx, &ledger.Batch{
		Accounts:            []*types.Account{{ID: id, Balance: big.NewInt(5)}},
		Transfers:           []*types.Transfer{{ID: id, Amount: big.NewInt(2)}},
		CrossChainTransfers: []*types.CrossChainTransfer{{ID: id, Amount: big.NewInt(2)}},
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateKey)

	account, err := store.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, account)
	xc, err := store.GetCrossChainTransfer(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, xc)
}

func TestStore_CommitWritesBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, store.Commit(ctx, &ledger.Batch{
		Accounts:            []*types.Account{{ID: id, Balance: big.NewInt(5)}},
		Locked:              []*types.LockedERC20{{ID: id, Amount: big.NewInt(7)}},
		Transfers:           []*types.Transfer{{ID: id, Amount: big.NewInt(5)}},
		CrossChainTransfers: []*types.CrossChainTransfer{{ID: id, Amount: big.NewInt(7)}},
	}))

	account, err := store.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "5", account.Balance.String())
	locked, err := store.GetLockedERC20(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "7", locked.Amount.String())

	// the record is listed by the same call
	all, err := store.CrossChainTransfers(ctx)
	require.NoError(t, err)
	var found bool
	for _, xc := range all {
		found = found || xc.ID == id
	}
	assert.True(t, found)
}

func TestStore_ReplaceCrossChainTransfer(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.New().String()

	require.NoError(t, store.CreateCrossChainTransfer(ctx, &types.CrossChainTransfer{ID: id, FromRoot: true, Amount: big.NewInt(3)}))
	require.NoError(t, store.ReplaceCrossChainTransfer(ctx, &types.CrossChainTransfer{ID: id, FromRoot: false, Amount: big.NewInt(4)}))

	got, err := store.GetCrossChainTransfer(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.FromRoot)
	assert.Equal(t, "4", got.Amount.String())
}
