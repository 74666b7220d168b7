package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rootledger/types"
)

// BalanceLedger keeps per-(token, holder) balances
type BalanceLedger struct {
	store EntityStore
}

func NewBalanceLedger(store EntityStore) *BalanceLedger {
	return &BalanceLedger{store: store}
}

// ApplyTransfer debits from and credits to, skipping the zero address on either side.
// Balances are not floored, a negative result is left visible.
func (l *BalanceLedger) ApplyTransfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	if from != (common.Address{}) {
		if err := l.add(ctx, token, from, new(big.Int).Neg(amount)); err != nil {
			return fmt.Errorf("debit %s: %w", from.Hex(), err)
		}
	}
	if to != (common.Address{}) {
		if err := l.add(ctx, token, to, amount); err != nil {
			return fmt.Errorf("credit %s: %w", to.Hex(), err)
		}
	}
	return nil
}

func (l *BalanceLedger) add(ctx context.Context, token, holder common.Address, delta *big.Int) error {
	account, err := l.Get(ctx, token, holder)
	if err != nil {
		return err
	}
	account.Balance.Add(account.Balance, delta)
	return l.store.SaveAccount(ctx, account)
}

// Get loads the holder account, or a zero balance account when absent
func (l *BalanceLedger) Get(ctx context.Context, token, holder common.Address) (*types.Account, error) {
	id := types.AccountID(token, holder)
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = &types.Account{
			ID:      id,
			Token:   token.Hex(),
			Holder:  holder.Hex(),
			Balance: big.NewInt(0),
		}
	}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return account, nil
}
