package workers

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rootledger/EVMRPC"
	"rootledger/config"
	"rootledger/ledger"
	"rootledger/memstore"
	"rootledger/types"
)

const chainID = 1337

var (
	token     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	treasury  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	predicate = common.HexToAddress("0x3000000000000000000000000000000000000003")
	alice     = common.HexToAddress("0xa11ce00000000000000000000000000000000000")
)

type fakeSource struct {
	head    uint64
	events  map[uint64][]EVMRPC.Event
	queries []EVMRPC.EventQuery
	fail    bool
}

func (f *fakeSource) BlockNumber(context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeSource) FetchEvents(_ context.Context, q EVMRPC.EventQuery) ([]EVMRPC.Event, error) {
	f.queries = append(f.queries, q)
	if f.fail {
		return nil, errors.New("rpc down")
	}
	var out []EVMRPC.Event
	for b := q.FromBlock; b <= q.ToBlock; b++ {
		out = append(out, f.events[b]...)
	}
	return out, nil
}

func mint(to common.Address, value int64, block uint64) EVMRPC.Event {
	return EVMRPC.Event{
		Kind:        EVMRPC.KindTransfer,
		BlockNumber: block,
		Transfer: &types.TransferEvent{
			Address:         token,
			Args:            &types.TransferArgs{From: common.Address{}, To: to, Value: big.NewInt(value)},
			TransactionHash: common.BigToHash(new(big.Int).SetUint64(block)),
			BlockNumber:     block,
			BlockTimestamp:  1700000000 + block,
		},
	}
}

func newScanner(t *testing.T, source *fakeSource, batch uint64) (*Scanner, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	registry := config.Registry{chainID: {Token: token.Hex(), Treasury: treasury.Hex(), Predicate: predicate.Hex()}}
	env, err := ledger.NewEnv(context.Background(), ledger.StaticNetwork(chainID), store, registry, zap.NewNop())
	require.NoError(t, err)

	return NewScanner(env, source, store, ScannerConfig{
		Token:            token,
		Predicate:        predicate,
		StartBlock:       10,
		BlockBatch:       batch,
		MinConfirmations: 2,
	}), store
}

func supply(t *testing.T, store *memstore.Store) string {
	t.Helper()
	tok, err := store.GetToken(context.Background(), token.Hex())
	require.NoError(t, err)
	if tok == nil {
		return "0"
	}
	return tok.TotalSupply.String()
}

func TestScanOnce_BatchesUpToConfirmedHead(t *testing.T) {
	source := &fakeSource{head: 22, events: map[uint64][]EVMRPC.Event{
		10: {mint(alice, 5, 10)},
		15: {mint(alice, 7, 15)},
		21: {mint(alice, 100, 21)}, // not confirmed yet
	}}
	s, store := newScanner(t, source, 4)

	scanned, err := s.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), scanned)

	require.Len(t, source.queries, 3)
	assert.Equal(t, uint64(10), source.queries[0].FromBlock)
	assert.Equal(t, uint64(13), source.queries[0].ToBlock)
	assert.Equal(t, uint64(18), source.queries[2].FromBlock)
	assert.Equal(t, uint64(20), source.queries[2].ToBlock)
	assert.Equal(t, token, source.queries[0].Token)

	assert.Equal(t, "12", supply(t, store))

	cursor, err := store.GetEVMScannedBlock(context.Background(), chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), cursor)
}

func TestScanOnce_ResumesAfterCursor(t *testing.T) {
	source := &fakeSource{head: 30}
	s, store := newScanner(t, source, 100)
	require.NoError(t, store.SetEVMScannedBlock(context.Background(), chainID, 25))

	scanned, err := s.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(28), scanned)
	require.Len(t, source.queries, 1)
	assert.Equal(t, uint64(26), source.queries[0].FromBlock)
}

func TestScanOnce_FailureKeepsCursor(t *testing.T) {
	source := &fakeSource{head: 30, fail: true}
	s, store := newScanner(t, source, 5)

	_, err := s.ScanOnce(context.Background())
	require.Error(t, err)

	cursor, err := store.GetEVMScannedBlock(context.Background(), chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), cursor)
}

func TestScanRange_ReplayIsIdempotent(t *testing.T) {
	source := &fakeSource{head: 30, events: map[uint64][]EVMRPC.Event{
		11: {mint(alice, 5, 11)},
	}}
	s, store := newScanner(t, source, 10)
	ctx := context.Background()

	require.NoError(t, s.ScanRange(ctx, 10, 12))
	require.NoError(t, s.ScanRange(ctx, 10, 12))
	assert.Equal(t, "5", supply(t, store))
}

func TestScanRange_StopsOnHandlerError(t *testing.T) {
	exit := EVMRPC.Event{
		Kind:        EVMRPC.KindExitToken,
		BlockNumber: 11,
		Exit: &types.ExitTokenTransaction{
			Args: &types.ExitTokenArgs{ContractAddress: alice, RootToken: token, Log: []byte{0xc0}},
			Hash: common.HexToHash("0xe1"),
		},
	}
	source := &fakeSource{head: 30, events: map[uint64][]EVMRPC.Event{
		11: {exit, mint(alice, 5, 11)},
	}}
	s, store := newScanner(t, source, 10)

	err := s.ScanRange(context.Background(), 10, 12)
	assert.ErrorIs(t, err, ledger.ErrDecode)
	assert.Equal(t, "0", supply(t, store), "events after the failure are not applied")
}

func TestScanOnce_EmptyExitLogHalts(t *testing.T) {
	exit := EVMRPC.Event{
		Kind:        EVMRPC.KindExitToken,
		BlockNumber: 11,
		Exit: &types.ExitTokenTransaction{
			Args: &types.ExitTokenArgs{ContractAddress: alice, RootToken: token},
			Hash: common.HexToHash("0xe2"),
		},
	}
	source := &fakeSource{head: 30, events: map[uint64][]EVMRPC.Event{11: {exit}}}
	s, store := newScanner(t, source, 10)

	scanned, err := s.ScanOnce(context.Background())
	assert.ErrorIs(t, err, ledger.ErrDecode)
	assert.Equal(t, int64(-1), scanned, "the batch with the exit is not marked scanned")

	block, err := store.GetEVMScannedBlock(context.Background(), chainID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), block)
}

func TestScanRange_SkipsUndecodedEvent(t *testing.T) {
	broken := mint(alice, 1, 11)
	broken.Transfer.Args = nil
	source := &fakeSource{head: 30, events: map[uint64][]EVMRPC.Event{
		11: {broken, mint(alice, 5, 12)},
	}}
	s, store := newScanner(t, source, 10)

	require.NoError(t, s.ScanRange(context.Background(), 10, 12))
	assert.Equal(t, "5", supply(t, store))
}
