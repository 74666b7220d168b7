package ledger

import (
	"context"
	"math/big"

	"rootledger/types"
)

// Tx stages the writes of one event on top of a Store. Reads see staged
// writes first. Nothing reaches the store until Commit.
type Tx struct {
	store Store

	accounts map[string]*types.Account
	tokens   map[string]*types.Token
	locked   map[string]*types.LockedERC20
	order    []staged

	transfers []*types.Transfer
	created   map[string]*types.CrossChainTransfer
	replaced  map[string]*types.CrossChainTransfer
	xcOrder   []string
}

type entityKind int

const (
	kindAccount entityKind = iota
	kindToken
	kindLocked
)

type staged struct {
	kind entityKind
	id   string
}

var _ EntityStore = (*Tx)(nil)

func NewTx(store Store) *Tx {
	return &Tx{
		store:    store,
		accounts: make(map[string]*types.Account),
		tokens:   make(map[string]*types.Token),
		locked:   make(map[string]*types.LockedERC20),
		created:  make(map[string]*types.CrossChainTransfer),
		replaced: make(map[string]*types.CrossChainTransfer),
	}
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func copyAccount(a *types.Account) *types.Account {
	c := *a
	c.Balance = copyInt(a.Balance)
	return &c
}

func copyToken(t *types.Token) *types.Token {
	c := *t
	c.TotalSupply = copyInt(t.TotalSupply)
	c.CirculatingSupply = copyInt(t.CirculatingSupply)
	return &c
}

func copyLocked(l *types.LockedERC20) *types.LockedERC20 {
	c := *l
	c.Amount = copyInt(l.Amount)
	return &c
}

func copyCrossChain(xc *types.CrossChainTransfer) *types.CrossChainTransfer {
	c := *xc
	c.Amount = copyInt(xc.Amount)
	return &c
}

func (tx *Tx) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	if a, ok := tx.accounts[id]; ok {
		return copyAccount(a), nil
	}
	return tx.store.GetAccount(ctx, id)
}

func (tx *Tx) SaveAccount(_ context.Context, a *types.Account) error {
	if a == nil || a.ID == "" {
		return ErrInvalidInput
	}
	if _, ok := tx.accounts[a.ID]; !ok {
		tx.order = append(tx.order, staged{kindAccount, a.ID})
	}
	tx.accounts[a.ID] = copyAccount(a)
	return nil
}

func (tx *Tx) GetToken(ctx context.Context, id string) (*types.Token, error) {
	if t, ok := tx.tokens[id]; ok {
		return copyToken(t), nil
	}
	return tx.store.GetToken(ctx, id)
}

func (tx *Tx) SaveToken(_ context.Context, t *types.Token) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	if _, ok := tx.tokens[t.ID]; !ok {
		tx.order = append(tx.order, staged{kindToken, t.ID})
	}
	tx.tokens[t.ID] = copyToken(t)
	return nil
}

func (tx *Tx) GetLockedERC20(ctx context.Context, id string) (*types.LockedERC20, error) {
	if l, ok := tx.locked[id]; ok {
		return copyLocked(l), nil
	}
	return tx.store.GetLockedERC20(ctx, id)
}

func (tx *Tx) SaveLockedERC20(_ context.Context, l *types.LockedERC20) error {
	if l == nil || l.ID == "" {
		return ErrInvalidInput
	}
	if _, ok := tx.locked[l.ID]; !ok {
		tx.order = append(tx.order, staged{kindLocked, l.ID})
	}
	tx.locked[l.ID] = copyLocked(l)
	return nil
}

// CreateTransfer fails early when the record exists, Commit checks again
func (tx *Tx) CreateTransfer(ctx context.Context, t *types.Transfer) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	existing, err := tx.GetTransfer(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateKey
	}
	c := *t
	c.Amount = copyInt(t.Amount)
	tx.transfers = append(tx.transfers, &c)
	return nil
}

func (tx *Tx) GetTransfer(ctx context.Context, id string) (*types.Transfer, error) {
	for _, t := range tx.transfers {
		if t.ID == id {
			c := *t
			c.Amount = copyInt(t.Amount)
			return &c, nil
		}
	}
	return tx.store.GetTransfer(ctx, id)
}

func (tx *Tx) CreateCrossChainTransfer(ctx context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	existing, err := tx.GetCrossChainTransfer(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateKey
	}
	tx.created[t.ID] = copyCrossChain(t)
	tx.xcOrder = append(tx.xcOrder, t.ID)
	return nil
}

func (tx *Tx) ReplaceCrossChainTransfer(_ context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ErrInvalidInput
	}
	if c, ok := tx.created[t.ID]; ok {
		// still new to the store, keep it a create
		*c = *copyCrossChain(t)
		return nil
	}
	if _, ok := tx.replaced[t.ID]; !ok {
		tx.xcOrder = append(tx.xcOrder, t.ID)
	}
	tx.replaced[t.ID] = copyCrossChain(t)
	return nil
}

func (tx *Tx) GetCrossChainTransfer(ctx context.Context, id string) (*types.CrossChainTransfer, error) {
	if xc, ok := tx.created[id]; ok {
		return copyCrossChain(xc), nil
	}
	if xc, ok := tx.replaced[id]; ok {
		return copyCrossChain(xc), nil
	}
	return tx.store.GetCrossChainTransfer(ctx, id)
}

// Batch returns the staged writes in the order they were first made
func (tx *Tx) Batch() *Batch {
	b := &Batch{Transfers: tx.transfers}
	for _, st := range tx.order {
		switch st.kind {
		case kindAccount:
			b.Accounts = append(b.Accounts, tx.accounts[st.id])
		case kindToken:
			b.Tokens = append(b.Tokens, tx.tokens[st.id])
		case kindLocked:
			b.Locked = append(b.Locked, tx.locked[st.id])
		}
	}
	for _, id := range tx.xcOrder {
		if xc, ok := tx.created[id]; ok {
			b.CrossChainTransfers = append(b.CrossChainTransfers, xc)
		} else {
			b.ReplacedCrossChainTransfers = append(b.ReplacedCrossChainTransfers, tx.replaced[id])
		}
	}
	return b
}

func (tx *Tx) Commit(ctx context.Context) error {
	return tx.store.Commit(ctx, tx.Batch())
}
