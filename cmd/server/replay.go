package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rootledger/EVMRPC"
	"rootledger/config"
	"rootledger/ledger"
	"rootledger/workers"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Apply a block range and print supply and escrow",
	Run:   runReplay,
}

var (
	replayFrom  *uint64
	replayTo    *uint64
	replayStore *string
)

func init() {
	replayFrom = replayCmd.Flags().Uint64("from", 0, "first block, defaults to the configured start block")
	replayTo = replayCmd.Flags().Uint64("to", 0, "last block (required)")
	replayStore = replayCmd.Flags().String("store", config.StoreMemory, "store to replay into (memory or redis)")
}

func runReplay(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
	defer closeLog()

	from := *replayFrom
	if from == 0 {
		from = cfg.EVM.StartBlock
	}
	if *replayTo < from {
		logger.Fatal("invalid block range", zap.Uint64("from", from), zap.Uint64("to", *replayTo))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore, err := openStore(ctx, *replayStore, cfg, logger)
	if err != nil {
		logger.Fatal("cannot open store", zap.Error(err))
	}
	defer closeStore()

	client := EVMRPC.New(cfg.EVM.RPCList, logger.Named("EVMRPC"))
	env, err := ledger.NewEnv(ctx, client, store, cfg.Registry, logger.Named("ledger"))
	if err != nil {
		logger.Fatal("cannot build ledger environment", zap.Error(err))
	}
	checkChainID(logger, cfg, env.ChainID)

	addrs, _ := cfg.Registry.Lookup(env.ChainID)
	token := common.HexToAddress(addrs.Token)
	scanner := workers.NewScanner(env, client, store, workers.ScannerConfig{
		Token:      token,
		Predicate:  common.HexToAddress(addrs.Predicate),
		BlockBatch: cfg.EVM.BlockBatch,
	})

	for start := from; start <= *replayTo; start += cfg.EVM.BlockBatch {
		end := start + cfg.EVM.BlockBatch - 1
		if end > *replayTo {
			end = *replayTo
		}
		if err := scanner.ScanRange(ctx, start, end); err != nil {
			logger.Fatal("replay failed", zap.Error(err))
		}
	}

	supply, err := ledger.NewSupplyTracker(store, logger).Get(ctx, token)
	if err != nil {
		logger.Fatal("read supply", zap.Error(err))
	}
	locked, err := ledger.NewEscrowLedger(store).Get(ctx, token)
	if err != nil {
		logger.Fatal("read escrow", zap.Error(err))
	}

	fmt.Printf("blocks:             %d-%d\n", from, *replayTo)
	fmt.Printf("total supply:       %s\n", supply.TotalSupply)
	fmt.Printf("circulating supply: %s\n", supply.CirculatingSupply)
	fmt.Printf("locked in bridge:   %s\n", locked.Amount)
}
