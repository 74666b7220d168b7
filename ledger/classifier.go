package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"rootledger/config"
	"rootledger/types"
)

type contracts struct {
	token     common.Address
	treasury  common.Address
	predicate common.Address
}

// Classifier maps addresses to roles using a registry validated at startup
type Classifier struct {
	chains map[int64]contracts
}

func NewClassifier(registry config.Registry) *Classifier {
	chains := make(map[int64]contracts, len(registry))
	for id, a := range registry {
		chains[id] = contracts{
			token:     common.HexToAddress(a.Token),
			treasury:  common.HexToAddress(a.Treasury),
			predicate: common.HexToAddress(a.Predicate),
		}
	}
	return &Classifier{chains: chains}
}

func (c *Classifier) lookup(chainID int64) (contracts, error) {
	cs, ok := c.chains[chainID]
	if !ok {
		return contracts{}, fmt.Errorf("%w %d", ErrConfiguration, chainID)
	}
	return cs, nil
}

// Classify returns the role of addr on chainID. An address configured as
// both treasury and predicate classifies as Reserved, use IsBridgePredicate
// to test the predicate role on its own.
func (c *Classifier) Classify(chainID int64, addr common.Address) (types.AddressRole, error) {
	cs, err := c.lookup(chainID)
	if err != nil {
		return types.RoleNormal, err
	}
	switch addr {
	case cs.token, cs.treasury:
		return types.RoleReserved, nil
	case cs.predicate:
		return types.RoleBridgePredicate, nil
	}
	return types.RoleNormal, nil
}

// IsReserved reports whether addr is the token or the treasury contract
func (c *Classifier) IsReserved(chainID int64, addr common.Address) (bool, error) {
	cs, err := c.lookup(chainID)
	if err != nil {
		return false, err
	}
	return addr == cs.token || addr == cs.treasury, nil
}

func (c *Classifier) IsBridgePredicate(chainID int64, addr common.Address) (bool, error) {
	cs, err := c.lookup(chainID)
	if err != nil {
		return false, err
	}
	return addr == cs.predicate, nil
}

// IsTrackedToken reports whether addr is the root token bridged by the predicate
func (c *Classifier) IsTrackedToken(chainID int64, addr common.Address) (bool, error) {
	cs, err := c.lookup(chainID)
	if err != nil {
		return false, err
	}
	return addr == cs.token, nil
}
