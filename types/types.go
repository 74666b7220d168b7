package types

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AddressRole is derived per lookup from the chain registry, never stored
type AddressRole int

const (
	RoleNormal AddressRole = iota
	RoleReserved
	RoleBridgePredicate
)

func (r AddressRole) String() string {
	switch r {
	case RoleReserved:
		return "reserved"
	case RoleBridgePredicate:
		return "bridge_predicate"
	default:
		return "normal"
	}
}

// Account is a token holder balance, keyed by token and holder.
// Balance is not clamped, a negative value means events arrived out of order.
type Account struct {
	ID      string
	Token   string
	Holder  string
	Balance *big.Int
}

// Token keeps supply figures for one token contract
type Token struct {
	ID                string
	TotalSupply       *big.Int
	CirculatingSupply *big.Int
}

// LockedERC20 is the amount of a root token held by the bridge predicate
type LockedERC20 struct {
	ID     string
	Amount *big.Int
}

// Transfer is an immutable record of a single Transfer log
type Transfer struct {
	ID          string
	Token       string
	From        string
	To          string
	Amount      *big.Int
	BlockHeight uint64
	Timestamp   time.Time
	TxHash      string
}

// CrossChainTransfer is an immutable record of a bridge movement.
// FromRoot is true for locks on the root chain and false for releases.
type CrossChainTransfer struct {
	ID          string
	Token       string
	FromRoot    bool
	Amount      *big.Int
	From        string
	To          string
	TxHash      string
	Timestamp   time.Time
	BlockHeight uint64
}

func AccountID(token, holder common.Address) string {
	return fmt.Sprintf("%s-%s", token.Hex(), holder.Hex())
}

// EventID is the record key for a log, or for an exit transaction when
// index is the transaction index
func EventID(txHash common.Hash, index uint) string {
	return fmt.Sprintf("%s-%d", txHash.Hex(), index)
}
