package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rootledger/EVMRPC"
	"rootledger/ledger"
	"rootledger/workers"
	"rootledger/workers/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan the root chain and serve the query API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
	defer closeLog()
	logger.Info("starting root ledger indexer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Server.Store, cfg, logger)
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

	// NewEnv already checked the registry entry
	addrs, _ := cfg.Registry.Lookup(env.ChainID)
	scanner := workers.NewScanner(env, client, store, workers.ScannerConfig{
		Token:            common.HexToAddress(addrs.Token),
		Predicate:        common.HexToAddress(addrs.Predicate),
		StartBlock:       cfg.EVM.StartBlock,
		BlockBatch:       cfg.EVM.BlockBatch,
		MinConfirmations: cfg.EVM.MinConfirmations,
		PollInterval:     cfg.EVM.PollInterval,
	})

	// two workers:
	// * scan root chain blocks into the ledger
	// * query API HTTP server (main worker)
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner.Worker_scanEVM(ctx)
	}()

	api := &handlers.API{
		Store:   store,
		Lister:  store,
		Cursor:  store,
		ChainID: env.ChainID,
		Log:     logger.Named("api"),
	}
	if err := workers.Worker_HTTP(ctx, cfg.Server.Listen, workers.NewRouter(api, logger), logger); err != nil {
		logger.Error("HTTP worker failed", zap.Error(err))
		stop()
	}
	<-done
}
