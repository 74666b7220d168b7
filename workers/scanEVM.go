package workers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rootledger/EVMRPC"
	"rootledger/ledger"
)

// WorkerShutdown tells the scan loop to exit after the current batch
var WorkerShutdown atomic.Bool

type EventSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FetchEvents(ctx context.Context, q EVMRPC.EventQuery) ([]EVMRPC.Event, error)
}

// Cursor persists the last fully processed block per chain, -1 means none
type Cursor interface {
	GetEVMScannedBlock(ctx context.Context, chainID int64) (int64, error)
	SetEVMScannedBlock(ctx context.Context, chainID int64, blockHeight int64) error
}

type ScannerConfig struct {
	Token            common.Address
	Predicate        common.Address
	StartBlock       uint64
	BlockBatch       uint64
	MinConfirmations uint64
	PollInterval     time.Duration
}

// Scanner feeds chain events to the ledger handlers one at a time, in log order
type Scanner struct {
	env    *ledger.Env
	source EventSource
	cursor Cursor
	cfg    ScannerConfig
	log    *zap.Logger
}

func NewScanner(env *ledger.Env, source EventSource, cursor Cursor, cfg ScannerConfig) *Scanner {
	if cfg.BlockBatch == 0 {
		cfg.BlockBatch = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &Scanner{
		env:    env,
		source: source,
		cursor: cursor,
		cfg:    cfg,
		log:    env.Log.Named("scanEVM"),
	}
}

// Worker_scanEVM polls until ctx is done or WorkerShutdown is set
func (s *Scanner) Worker_scanEVM(ctx context.Context) {
	s.log.Info("starting EVM scanner",
		zap.String("token", s.cfg.Token.Hex()),
		zap.String("predicate", s.cfg.Predicate.Hex()))

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for !WorkerShutdown.Load() {
		if _, err := s.ScanOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("scan failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.log.Info("EVM scanner stopped")
			return
		case <-ticker.C:
		}
	}
	s.log.Info("EVM scanner stopped")
}

// ScanOnce processes every confirmed block after the cursor and returns the
// new cursor position. The cursor only moves past fully applied batches.
func (s *Scanner) ScanOnce(ctx context.Context) (int64, error) {
	scanned, err := s.cursor.GetEVMScannedBlock(ctx, s.env.ChainID)
	if err != nil {
		return -1, fmt.Errorf("get scanned block: %w", err)
	}

	latest, err := s.source.BlockNumber(ctx)
	if err != nil {
		return scanned, fmt.Errorf("get latest block: %w", err)
	}
	chainHead.WithLabelValues(chainLabel(s.env.ChainID)).Set(float64(latest))

	if latest < s.cfg.MinConfirmations {
		return scanned, nil
	}
	safe := latest - s.cfg.MinConfirmations

	from := s.cfg.StartBlock
	if scanned >= 0 && uint64(scanned)+1 > from {
		from = uint64(scanned) + 1
	}

	for from <= safe {
		if WorkerShutdown.Load() {
			break
		}
		to := from + s.cfg.BlockBatch - 1
		if to > safe {
			to = safe
		}

		if err := s.ScanRange(ctx, from, to); err != nil {
			// don't consider this batch as processed
			return scanned, err
		}

		if err := s.cursor.SetEVMScannedBlock(ctx, s.env.ChainID, int64(to)); err != nil {
			return scanned, fmt.Errorf("set scanned block: %w", err)
		}
		scanned = int64(to)
		scannedBlock.WithLabelValues(chainLabel(s.env.ChainID)).Set(float64(to))
		from = to + 1
	}

	return scanned, nil
}

// ScanRange applies the events of blocks [from, to] without touching the cursor
func (s *Scanner) ScanRange(ctx context.Context, from, to uint64) error {
	s.log.Info("scanning blocks", zap.Uint64("from", from), zap.Uint64("to", to))

	events, err := s.source.FetchEvents(ctx, EVMRPC.EventQuery{
		FromBlock: from,
		ToBlock:   to,
		Token:     s.cfg.Token,
		Predicate: s.cfg.Predicate,
	})
	if err != nil {
		return fmt.Errorf("fetch events %d-%d: %w", from, to, err)
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.dispatch(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) dispatch(ctx context.Context, ev EVMRPC.Event) error {
	var err error
	switch ev.Kind {
	case EVMRPC.KindTransfer:
		err = ledger.HandleTransfer(ctx, s.env, ev.Transfer)
	case EVMRPC.KindLockedERC20:
		err = ledger.HandleLockedERC20(ctx, s.env, ev.Lock)
	case EVMRPC.KindExitToken:
		err = ledger.HandleExitToken(ctx, s.env, ev.Exit)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	kind := string(ev.Kind)
	switch {
	case err == nil:
		eventsProcessed.WithLabelValues(kind, "applied").Inc()
		return nil
	case errors.Is(err, ledger.ErrDuplicateKey):
		// already applied by an earlier run of the same range
		s.log.Debug("event already applied", zap.String("kind", kind), zap.Uint64("block", ev.BlockNumber))
		eventsProcessed.WithLabelValues(kind, "duplicate").Inc()
		return nil
	case errors.Is(err, ledger.ErrMissingArguments):
		// the log did not decode, nothing can ever be applied from it
		s.log.Warn("skip event without arguments", zap.String("kind", kind), zap.Uint64("block", ev.BlockNumber))
		eventsProcessed.WithLabelValues(kind, "skipped").Inc()
		return nil
	}

	eventErrors.WithLabelValues(kind).Inc()
	return fmt.Errorf("%s at block %d: %w", kind, ev.BlockNumber, err)
}
