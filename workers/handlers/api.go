package handlers

import (
	"context"

	"go.uber.org/zap"

	"rootledger/ledger"
	"rootledger/types"
)

type CrossChainLister interface {
	CrossChainTransfers(ctx context.Context) ([]*types.CrossChainTransfer, error)
}

type ScannedBlockReader interface {
	GetEVMScannedBlock(ctx context.Context, chainID int64) (int64, error)
}

// API serves read-only views of the ledger store
type API struct {
	Store   ledger.Store
	Lister  CrossChainLister
	Cursor  ScannedBlockReader
	ChainID int64
	Log     *zap.Logger
}
