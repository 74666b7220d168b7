package ledger_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootledger/ledger"
)

func TestDecodeExitLog(t *testing.T) {
	amount, _ := new(big.Int).SetString("1000000000000000000000", 10)

	withdrawer, got, err := ledger.DecodeExitLog(exitLogBytes(t, bob, amount))
	require.NoError(t, err)

	assert.Equal(t, bob, withdrawer)
	assert.Equal(t, amount.String(), got.String())
}

func TestDecodeExitLog_ShortFields(t *testing.T) {
	// topics and data do not have to be padded
	raw, err := rlp.EncodeToBytes([]interface{}{
		tokenAddr.Bytes(),
		[][]byte{{0x01}, bob.Bytes()},
		[]byte{0x64},
	})
	require.NoError(t, err)

	withdrawer, amount, err := ledger.DecodeExitLog(raw)
	require.NoError(t, err)
	assert.Equal(t, bob, withdrawer)
	assert.Equal(t, int64(100), amount.Int64())
}

func TestDecodeExitLog_EmptyData(t *testing.T) {
	raw, err := rlp.EncodeToBytes([]interface{}{
		tokenAddr.Bytes(),
		[][]byte{{0x01}, bob.Bytes()},
		[]byte{},
	})
	require.NoError(t, err)

	_, amount, err := ledger.DecodeExitLog(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Sign())
}

func TestDecodeExitLog_Empty(t *testing.T) {
	for _, raw := range [][]byte{nil, {}} {
		_, _, err := ledger.DecodeExitLog(raw)
		assert.ErrorIs(t, err, ledger.ErrDecode)
	}
}

func TestDecodeExitLog_Malformed(t *testing.T) {
	topics := [][]byte{common.LeftPadBytes([]byte{0x01}, 32), common.LeftPadBytes(bob.Bytes(), 32)}

	encode := func(v interface{}) []byte {
		raw, err := rlp.EncodeToBytes(v)
		require.NoError(t, err)
		return raw
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty input", nil},
		{"garbage", []byte{0xff, 0x01, 0x02}},
		{"not a list", encode([]byte("hello"))},
		{"two elements", encode([]interface{}{tokenAddr.Bytes(), topics})},
		{"four elements", encode([]interface{}{tokenAddr.Bytes(), topics, []byte{0x01}, []byte{0x02}})},
		{"single topic", encode([]interface{}{tokenAddr.Bytes(), topics[:1], []byte{0x01}})},
		{"topics not a list", encode([]interface{}{tokenAddr.Bytes(), []byte{0x01}, []byte{0x01}})},
		{"short address", encode([]interface{}{[]byte{0x01, 0x02}, topics, []byte{0x01}})},
		{"oversized topic", encode([]interface{}{tokenAddr.Bytes(), [][]byte{topics[0], make([]byte, 33)}, []byte{0x01}})},
		{"trailing bytes", append(encode([]interface{}{tokenAddr.Bytes(), topics, []byte{0x01}}), 0x80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ledger.DecodeExitLog(tt.raw)
			assert.ErrorIs(t, err, ledger.ErrDecode)
		})
	}
}
