package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rootledger/types"
)

// EscrowLedger tracks the root token amount locked in the bridge predicate
type EscrowLedger struct {
	store EntityStore
}

func NewEscrowLedger(store EntityStore) *EscrowLedger {
	return &EscrowLedger{store: store}
}

// Adjust adds delta to the locked amount of rootToken and saves it.
// Nothing is written when the result would be negative.
func (l *EscrowLedger) Adjust(ctx context.Context, rootToken common.Address, delta *big.Int) (*types.LockedERC20, error) {
	locked, err := l.apply(ctx, rootToken, delta)
	if err != nil {
		return nil, err
	}
	if err := l.save(ctx, locked); err != nil {
		return nil, err
	}
	return locked, nil
}

// apply computes the adjusted record without writing it
func (l *EscrowLedger) apply(ctx context.Context, rootToken common.Address, delta *big.Int) (*types.LockedERC20, error) {
	locked, err := l.Get(ctx, rootToken)
	if err != nil {
		return nil, err
	}
	next := new(big.Int).Add(locked.Amount, delta)
	if next.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s locked %s, delta %s", ErrInvariantViolation, rootToken.Hex(), locked.Amount, delta)
	}
	locked.Amount = next
	return locked, nil
}

func (l *EscrowLedger) save(ctx context.Context, locked *types.LockedERC20) error {
	return l.store.SaveLockedERC20(ctx, locked)
}

func (l *EscrowLedger) Get(ctx context.Context, rootToken common.Address) (*types.LockedERC20, error) {
	locked, err := l.store.GetLockedERC20(ctx, rootToken.Hex())
	if err != nil {
		return nil, err
	}
	if locked == nil {
		locked = &types.LockedERC20{ID: rootToken.Hex()}
	}
	if locked.Amount == nil {
		locked.Amount = big.NewInt(0)
	}
	return locked, nil
}
