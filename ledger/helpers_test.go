package ledger_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rootledger/config"
	"rootledger/ledger"
	"rootledger/memstore"
	"rootledger/types"
)

const testChainID = 1337

var (
	tokenAddr     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	treasuryAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	predicateAddr = common.HexToAddress("0x3000000000000000000000000000000000000003")

	alice = common.HexToAddress("0xa11ce00000000000000000000000000000000000")
	bob   = common.HexToAddress("0xb0b0000000000000000000000000000000000000")

	zeroAddr = common.Address{}
)

func testRegistry() config.Registry {
	return config.Registry{
		testChainID: {
			Token:     tokenAddr.Hex(),
			Treasury:  treasuryAddr.Hex(),
			Predicate: predicateAddr.Hex(),
		},
	}
}

func newTestEnv(t *testing.T) (*ledger.Env, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	env, err := ledger.NewEnv(context.Background(), ledger.StaticNetwork(testChainID), store, testRegistry(), zap.NewNop())
	require.NoError(t, err)
	return env, store
}

func transferEvent(from, to common.Address, value int64, tx byte, logIndex uint) *types.TransferEvent {
	return &types.TransferEvent{
		Address: tokenAddr,
		Args: &types.TransferArgs{
			From:  from,
			To:    to,
			Value: big.NewInt(value),
		},
		TransactionHash: common.BytesToHash([]byte{tx}),
		LogIndex:        logIndex,
		BlockNumber:     100 + uint64(tx),
		BlockTimestamp:  1700000000 + uint64(tx),
	}
}

// exitLogBytes encodes the child chain burn log (Transfer to zero) that
// exitTokens receives
func exitLogBytes(t *testing.T, withdrawer common.Address, amount *big.Int) []byte {
	t.Helper()
	topic0 := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	raw, err := rlp.EncodeToBytes([]interface{}{
		tokenAddr.Bytes(),
		[][]byte{topic0.Bytes(), common.LeftPadBytes(withdrawer.Bytes(), 32), make([]byte, 32)},
		common.LeftPadBytes(amount.Bytes(), 32),
	})
	require.NoError(t, err)
	return raw
}

func requireBalance(t *testing.T, store ledger.Store, holder common.Address, want int64) {
	t.Helper()
	account, err := ledger.NewBalanceLedger(store).Get(context.Background(), tokenAddr, holder)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(want).String(), account.Balance.String(), "balance of %s", holder.Hex())
}

func requireSupply(t *testing.T, store ledger.Store, total, circulating int64) {
	t.Helper()
	token, err := ledger.NewSupplyTracker(store, zap.NewNop()).Get(context.Background(), tokenAddr)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(total).String(), token.TotalSupply.String(), "total supply")
	require.Equal(t, big.NewInt(circulating).String(), token.CirculatingSupply.String(), "circulating supply")
}
