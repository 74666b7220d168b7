package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rootledger/types"
)

// SupplyTracker maintains total and circulating supply per token.
//
// Total supply moves only on mints and burns. Circulating supply excludes
// tokens held by reserved addresses, so it moves when tokens enter or
// leave a reserved address as well as on mints and burns outside them.
// Both signals are computed independently and cancel when both fire,
// e.g. a transfer between two reserved addresses leaves circulation unchanged.
type SupplyTracker struct {
	store EntityStore
	log   *zap.Logger
}

func NewSupplyTracker(store EntityStore, logger *zap.Logger) *SupplyTracker {
	return &SupplyTracker{store: store, log: logger}
}

func (s *SupplyTracker) ApplyTransfer(
	ctx context.Context,
	token, from, to common.Address,
	amount *big.Int,
	reservedFrom, reservedTo bool,
) (*types.Token, error) {
	record, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	var addCirculating, removeCirculating bool

	// mint
	if from == (common.Address{}) {
		record.TotalSupply.Add(record.TotalSupply, amount)
		if !reservedTo {
			addCirculating = true
		}
	}
	// burn
	if to == (common.Address{}) {
		record.TotalSupply.Sub(record.TotalSupply, amount)
		if !reservedFrom {
			removeCirculating = true
		}
	}
	// treasury out, a burn from the treasury never circulated
	if reservedFrom && to != (common.Address{}) {
		addCirculating = true
	}
	// treasury in, a mint into the treasury never circulated
	if reservedTo && from != (common.Address{}) {
		removeCirculating = true
	}

	switch {
	case addCirculating && !removeCirculating:
		record.CirculatingSupply.Add(record.CirculatingSupply, amount)
		s.log.Info("circulating supply increase",
			zap.Stringer("amount", amount),
			zap.Stringer("circulatingSupply", record.CirculatingSupply))
	case removeCirculating && !addCirculating:
		record.CirculatingSupply.Sub(record.CirculatingSupply, amount)
		s.log.Info("circulating supply decrease",
			zap.Stringer("amount", amount),
			zap.Stringer("circulatingSupply", record.CirculatingSupply))
	}

	if err := s.store.SaveToken(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SupplyTracker) Get(ctx context.Context, token common.Address) (*types.Token, error) {
	record, err := s.store.GetToken(ctx, token.Hex())
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &types.Token{ID: token.Hex()}
	}
	if record.TotalSupply == nil {
		record.TotalSupply = big.NewInt(0)
	}
	if record.CirculatingSupply == nil {
		record.CirculatingSupply = big.NewInt(0)
	}
	return record, nil
}
