package ledger_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rootledger/config"
	"rootledger/ledger"
	"rootledger/types"
)

func TestClassify(t *testing.T) {
	c := ledger.NewClassifier(testRegistry())

	tests := []struct {
		name string
		addr common.Address
		want types.AddressRole
	}{
		{"token", tokenAddr, types.RoleReserved},
		{"treasury", treasuryAddr, types.RoleReserved},
		{"predicate", predicateAddr, types.RoleBridgePredicate},
		{"holder", alice, types.RoleNormal},
		{"zero", zeroAddr, types.RoleNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := c.Classify(testChainID, tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestClassify_UnknownChain(t *testing.T) {
	c := ledger.NewClassifier(testRegistry())

	_, err := c.Classify(1, alice)
	assert.True(t, errors.Is(err, ledger.ErrConfiguration), "got %v", err)

	_, err = c.IsReserved(1, alice)
	assert.ErrorIs(t, err, ledger.ErrConfiguration)

	_, err = c.IsBridgePredicate(1, alice)
	assert.ErrorIs(t, err, ledger.ErrConfiguration)
}

// the testnet deployment uses one contract as both treasury and predicate
func TestClassify_TreasuryIsPredicate(t *testing.T) {
	c := ledger.NewClassifier(config.DefaultRegistry())
	dedicate := common.HexToAddress("0xdd6596f2029e6233deffaca316e6a95217d4dc34")

	role, err := c.Classify(5, dedicate)
	require.NoError(t, err)
	assert.Equal(t, types.RoleReserved, role)

	reserved, err := c.IsReserved(5, dedicate)
	require.NoError(t, err)
	assert.True(t, reserved)

	predicate, err := c.IsBridgePredicate(5, dedicate)
	require.NoError(t, err)
	assert.True(t, predicate)
}
