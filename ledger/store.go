package ledger

import (
	"context"

	"rootledger/types"
)

// EntityStore reads and writes ledger entities under their string keys.
// Get methods return nil, nil when the record is absent.
type EntityStore interface {
	GetAccount(ctx context.Context, id string) (*types.Account, error)
	SaveAccount(ctx context.Context, a *types.Account) error

	GetToken(ctx context.Context, id string) (*types.Token, error)
	SaveToken(ctx context.Context, t *types.Token) error

	GetLockedERC20(ctx context.Context, id string) (*types.LockedERC20, error)
	SaveLockedERC20(ctx context.Context, l *types.LockedERC20) error

	// Create methods return ErrDuplicateKey if the id exists
	CreateTransfer(ctx context.Context, t *types.Transfer) error
	GetTransfer(ctx context.Context, id string) (*types.Transfer, error)

	CreateCrossChainTransfer(ctx context.Context, t *types.CrossChainTransfer) error
	GetCrossChainTransfer(ctx context.Context, id string) (*types.CrossChainTransfer, error)
	// ReplaceCrossChainTransfer writes t whether or not the id exists
	ReplaceCrossChainTransfer(ctx context.Context, t *types.CrossChainTransfer) error
}

// Store is an EntityStore that can also apply the writes of one event at once
type Store interface {
	EntityStore

	// Commit writes every entity of b or none of them. It returns
	// ErrDuplicateKey, writing nothing, if a created record exists.
	Commit(ctx context.Context, b *Batch) error
}

// Batch holds the writes of one event
type Batch struct {
	Accounts []*types.Account
	Tokens   []*types.Token
	Locked   []*types.LockedERC20

	// created, must not exist yet
	Transfers           []*types.Transfer
	CrossChainTransfers []*types.CrossChainTransfer

	// written unconditionally
	ReplacedCrossChainTransfers []*types.CrossChainTransfer
}

// NetworkInfo resolves the chain the events come from
type NetworkInfo interface {
	ChainID(ctx context.Context) (int64, error)
}
