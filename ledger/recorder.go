package ledger

import (
	"context"
	"fmt"

	"rootledger/types"
)

// Recorder creates the immutable transfer records
type Recorder struct {
	store EntityStore
}

func NewRecorder(store EntityStore) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) RecordTransfer(ctx context.Context, ev *types.TransferEvent) (*types.Transfer, error) {
	t := &types.Transfer{
		ID:          types.EventID(ev.TransactionHash, ev.LogIndex),
		Token:       ev.Address.Hex(),
		From:        ev.Args.From.Hex(),
		To:          ev.Args.To.Hex(),
		Amount:      ev.Args.Value,
		BlockHeight: ev.BlockNumber,
		Timestamp:   types.BlockTime(ev.BlockTimestamp),
		TxHash:      ev.TransactionHash.Hex(),
	}
	if err := r.store.CreateTransfer(ctx, t); err != nil {
		return nil, fmt.Errorf("create transfer %s: %w", t.ID, err)
	}
	return t, nil
}

func (r *Recorder) RecordCrossChain(ctx context.Context, xc *types.CrossChainTransfer) error {
	if err := r.store.CreateCrossChainTransfer(ctx, xc); err != nil {
		return fmt.Errorf("create cross chain transfer %s: %w", xc.ID, err)
	}
	return nil
}

// ReplaceCrossChain overwrites the cross chain record under xc.ID
func (r *Recorder) ReplaceCrossChain(ctx context.Context, xc *types.CrossChainTransfer) error {
	if err := r.store.ReplaceCrossChainTransfer(ctx, xc); err != nil {
		return fmt.Errorf("replace cross chain transfer %s: %w", xc.ID, err)
	}
	return nil
}

func (r *Recorder) GetCrossChain(ctx context.Context, id string) (*types.CrossChainTransfer, error) {
	return r.store.GetCrossChainTransfer(ctx, id)
}
