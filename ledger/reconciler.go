package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rootledger/types"
)

// TxMeta is the part of a cross chain record taken from the event envelope
type TxMeta struct {
	ID          string
	TxHash      common.Hash
	BlockHeight uint64
	Timestamp   time.Time
}

// Reconciler keeps locked escrow consistent with lock and exit events
// and records every bridge movement
type Reconciler struct {
	escrow   *EscrowLedger
	recorder *Recorder
	log      *zap.Logger
}

func NewReconciler(escrow *EscrowLedger, recorder *Recorder, logger *zap.Logger) *Reconciler {
	return &Reconciler{escrow: escrow, recorder: recorder, log: logger}
}

// HandleLock books a deposit locked on the root chain
func (r *Reconciler) HandleLock(ctx context.Context, args *types.LockedERC20Args, meta TxMeta) error {
	return r.move(ctx, args.RootToken, args.Amount, r.recorder.RecordCrossChain, &types.CrossChainTransfer{
		ID:          meta.ID,
		Token:       args.RootToken.Hex(),
		FromRoot:    true,
		Amount:      args.Amount,
		From:        args.Depositor.Hex(),
		To:          args.DepositReceiver.Hex(),
		TxHash:      meta.TxHash.Hex(),
		Timestamp:   meta.Timestamp,
		BlockHeight: meta.BlockHeight,
	})
}

// HandleExit releases tokens on the root chain, the withdrawer and amount
// come from the receipt log carried in the exit call
func (r *Reconciler) HandleExit(ctx context.Context, args *types.ExitTokenArgs, meta TxMeta) error {
	withdrawer, amount, err := DecodeExitLog(args.Log)
	if err != nil {
		return err
	}

	r.log.Info("exit decoded",
		zap.String("withdrawer", withdrawer.Hex()),
		zap.Stringer("amount", amount),
		zap.String("rootToken", args.RootToken.Hex()))

	xc := &types.CrossChainTransfer{
		ID:          meta.ID,
		Token:       args.RootToken.Hex(),
		FromRoot:    false,
		Amount:      amount,
		From:        args.ContractAddress.Hex(),
		To:          withdrawer.Hex(),
		TxHash:      meta.TxHash.Hex(),
		Timestamp:   meta.Timestamp,
		BlockHeight: meta.BlockHeight,
	}

	// The release Transfer of the same transaction is keyed by its log
	// index, which can equal the exit's transaction index. That record is
	// overwritten, only an identical record means the exit was applied.
	existing, err := r.recorder.GetCrossChain(ctx, xc.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		if sameMovement(existing, xc) {
			return fmt.Errorf("exit %s: %w", xc.ID, ErrDuplicateKey)
		}
		r.log.Warn("exit replaces cross chain record of its release",
			zap.String("id", xc.ID),
			zap.String("from", existing.From),
			zap.String("to", existing.To))
		return r.move(ctx, args.RootToken, new(big.Int).Neg(amount), r.recorder.ReplaceCrossChain, xc)
	}

	return r.move(ctx, args.RootToken, new(big.Int).Neg(amount), r.recorder.RecordCrossChain, xc)
}

func sameMovement(a, b *types.CrossChainTransfer) bool {
	return a.FromRoot == b.FromRoot &&
		a.From == b.From &&
		a.To == b.To &&
		a.TxHash == b.TxHash &&
		a.Amount != nil && b.Amount != nil && a.Amount.Cmp(b.Amount) == 0
}

// HandlePredicateRelease records a Transfer sent by the predicate. The
// lock/exit path is not touched, both surfaces describe the same bridge.
func (r *Reconciler) HandlePredicateRelease(ctx context.Context, ev *types.TransferEvent) error {
	id := types.EventID(ev.TransactionHash, ev.LogIndex)

	// an exit logged earlier in the transaction may own this id already,
	// its record carries the escrow change and is kept. Replays of the
	// transfer itself stop at the transfer record.
	existing, err := r.recorder.GetCrossChain(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		r.log.Warn("release shares cross chain record id with its exit, keeping exit",
			zap.String("id", id),
			zap.String("from", existing.From),
			zap.String("to", existing.To))
		return nil
	}

	recipient := ev.Args.To.Hex()
	return r.recorder.RecordCrossChain(ctx, &types.CrossChainTransfer{
		ID:          id,
		Token:       ev.Address.Hex(),
		FromRoot:    false,
		Amount:      ev.Args.Value,
		From:        recipient,
		To:          recipient,
		TxHash:      ev.TransactionHash.Hex(),
		Timestamp:   types.BlockTime(ev.BlockTimestamp),
		BlockHeight: ev.BlockNumber,
	})
}

// move validates the escrow change, writes the record, then saves escrow.
// A negative escrow or a duplicate record leaves the store untouched.
func (r *Reconciler) move(
	ctx context.Context,
	rootToken common.Address,
	delta *big.Int,
	write func(context.Context, *types.CrossChainTransfer) error,
	xc *types.CrossChainTransfer,
) error {
	locked, err := r.escrow.apply(ctx, rootToken, delta)
	if err != nil {
		return err
	}
	if err := write(ctx, xc); err != nil {
		return err
	}
	if err := r.escrow.save(ctx, locked); err != nil {
		return err
	}

	r.log.Info("locked amount updated",
		zap.String("rootToken", rootToken.Hex()),
		zap.Stringer("delta", delta),
		zap.Stringer("locked", locked.Amount))
	return nil
}
