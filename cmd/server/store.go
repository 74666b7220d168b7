package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rootledger/config"
	"rootledger/ledger"
	"rootledger/memstore"
	"rootledger/redis"
	"rootledger/types"
)

// backend is what the commands need from a store on top of ledger.Store
type backend interface {
	ledger.Store
	GetEVMScannedBlock(ctx context.Context, chainID int64) (int64, error)
	SetEVMScannedBlock(ctx context.Context, chainID int64, blockHeight int64) error
	CrossChainTransfers(ctx context.Context) ([]*types.CrossChainTransfer, error)
}

func openStore(ctx context.Context, kind string, cfg *config.Configuration, logger *zap.Logger) (backend, func(), error) {
	switch kind {
	case config.StoreMemory:
		logger.Warn("using in-memory store, state is lost on exit")
		return memstore.New(), func() {}, nil

	case config.StoreRedis:
		store := redis.New(cfg.Server.RedisHost, cfg.Server.RedisPort)
		// without persistence do not continue
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("connect to Redis %s:%d: %w", cfg.Server.RedisHost, cfg.Server.RedisPort, err)
		}
		logger.Info("connected to Redis", zap.String("host", cfg.Server.RedisHost), zap.Int("port", cfg.Server.RedisPort))
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", kind)
}
