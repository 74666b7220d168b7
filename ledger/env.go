package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rootledger/config"
)

// Env carries everything a handler needs. It is built once by the host
// before the first event and never mutated afterwards.
type Env struct {
	ChainID    int64
	Store      Store
	Classifier *Classifier
	Log        *zap.Logger
}

// NewEnv resolves the chain id once and fails fast when the registry has no entry for it
func NewEnv(ctx context.Context, network NetworkInfo, store Store, registry config.Registry, logger *zap.Logger) (*Env, error) {
	chainID, err := network.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}

	classifier := NewClassifier(registry)
	if _, err := classifier.lookup(chainID); err != nil {
		return nil, err
	}

	return &Env{
		ChainID:    chainID,
		Store:      store,
		Classifier: classifier,
		Log:        logger.With(zap.Int64("chainID", chainID)),
	}, nil
}

// StaticNetwork is a NetworkInfo with a fixed chain id
type StaticNetwork int64

func (n StaticNetwork) ChainID(context.Context) (int64, error) {
	return int64(n), nil
}

func (e *Env) reconciler(store EntityStore) *Reconciler {
	return NewReconciler(NewEscrowLedger(store), NewRecorder(store), e.Log)
}
