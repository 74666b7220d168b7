package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rootledger/types"
)

// HandleTransfer records a token Transfer log and applies it to balances
// and supply. A transfer sent by the bridge predicate is also recorded as a
// cross chain release. All writes of the event are committed together.
func HandleTransfer(ctx context.Context, env *Env, ev *types.TransferEvent) error {
	if ev == nil || ev.Args == nil || ev.Args.Value == nil {
		return fmt.Errorf("transfer: %w", ErrMissingArguments)
	}
	args := ev.Args

	// classify before any write, a registry miss aborts cleanly
	reservedFrom, err := env.Classifier.IsReserved(env.ChainID, args.From)
	if err != nil {
		return err
	}
	reservedTo, err := env.Classifier.IsReserved(env.ChainID, args.To)
	if err != nil {
		return err
	}
	fromPredicate, err := env.Classifier.IsBridgePredicate(env.ChainID, args.From)
	if err != nil {
		return err
	}

	log := env.Log.With(
		zap.String("txHash", ev.TransactionHash.Hex()),
		zap.Uint("logIndex", ev.LogIndex),
		zap.Uint64("block", ev.BlockNumber))
	log.Info("transfer",
		zap.String("from", args.From.Hex()),
		zap.String("to", args.To.Hex()),
		zap.Stringer("value", args.Value))

	tx := NewTx(env.Store)

	// the record key doubles as the replay guard: a duplicate stops here
	if _, err := NewRecorder(tx).RecordTransfer(ctx, ev); err != nil {
		return err
	}

	if err := NewBalanceLedger(tx).ApplyTransfer(ctx, ev.Address, args.From, args.To, args.Value); err != nil {
		return fmt.Errorf("apply balances: %w", err)
	}

	if args.From == (common.Address{}) {
		log.Info("mint", zap.Stringer("value", args.Value))
	}
	if args.To == (common.Address{}) {
		log.Info("burn", zap.Stringer("value", args.Value))
	}
	if _, err := NewSupplyTracker(tx, log).ApplyTransfer(ctx, ev.Address, args.From, args.To, args.Value, reservedFrom, reservedTo); err != nil {
		return fmt.Errorf("apply supply: %w", err)
	}

	if fromPredicate {
		if err := env.reconciler(tx).HandlePredicateRelease(ctx, ev); err != nil {
			return err
		}
	}
	return commit(ctx, tx)
}

// HandleLockedERC20 books a LockedERC20 event of the predicate
func HandleLockedERC20(ctx context.Context, env *Env, ev *types.LockedERC20Event) error {
	if ev == nil || ev.Args == nil || ev.Args.Amount == nil {
		return fmt.Errorf("locked erc20: %w", ErrMissingArguments)
	}

	tracked, err := env.Classifier.IsTrackedToken(env.ChainID, ev.Args.RootToken)
	if err != nil {
		return err
	}
	if !tracked {
		env.Log.Debug("skip lock of untracked root token", zap.String("rootToken", ev.Args.RootToken.Hex()))
		return nil
	}

	env.Log.Info("locked erc20",
		zap.String("txHash", ev.TransactionHash.Hex()),
		zap.String("depositor", ev.Args.Depositor.Hex()),
		zap.String("depositReceiver", ev.Args.DepositReceiver.Hex()),
		zap.Stringer("amount", ev.Args.Amount))

	tx := NewTx(env.Store)
	err = env.reconciler(tx).HandleLock(ctx, ev.Args, TxMeta{
		ID:          types.EventID(ev.TransactionHash, ev.LogIndex),
		TxHash:      ev.TransactionHash,
		BlockHeight: ev.BlockNumber,
		Timestamp:   types.BlockTime(ev.BlockTimestamp),
	})
	if err != nil {
		return err
	}
	return commit(ctx, tx)
}

// HandleExitToken books an exitTokens call of the predicate
func HandleExitToken(ctx context.Context, env *Env, tx *types.ExitTokenTransaction) error {
	// an empty log is left to the decoder and fails as ErrDecode
	if tx == nil || tx.Args == nil {
		return fmt.Errorf("exit token: %w", ErrMissingArguments)
	}

	tracked, err := env.Classifier.IsTrackedToken(env.ChainID, tx.Args.RootToken)
	if err != nil {
		return err
	}
	if !tracked {
		env.Log.Debug("skip exit of untracked root token", zap.String("rootToken", tx.Args.RootToken.Hex()))
		return nil
	}

	env.Log.Info("exit token",
		zap.String("txHash", tx.Hash.Hex()),
		zap.Uint("transactionIndex", tx.TransactionIndex))

	staged := NewTx(env.Store)
	err = env.reconciler(staged).HandleExit(ctx, tx.Args, TxMeta{
		ID:          types.EventID(tx.Hash, tx.TransactionIndex),
		TxHash:      tx.Hash,
		BlockHeight: tx.BlockNumber,
		Timestamp:   types.BlockTime(tx.BlockTimestamp),
	})
	if err != nil {
		return err
	}
	return commit(ctx, staged)
}

func commit(ctx context.Context, tx *Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
