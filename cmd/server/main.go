package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rootledger/config"
)

var (
	configPath *string
	logLevel   *string
	network    *string
)

var rootCmd = &cobra.Command{
	Use:   "rootledger",
	Short: "Root chain ERC20 ledger indexer",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.yml", "path to the YAML config file")
	logLevel = rootCmd.PersistentFlags().String("logLevel", "info", "log level (debug, info, warn, error)")
	network = rootCmd.PersistentFlags().String("network", "", "expected network (mainnet, testnet), overrides EVM chain_id")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --network flag
func loadConfig() *config.Configuration {
	cfg := config.Init(*configPath)
	if *network != "" {
		if err := cfg.SetNetwork(*network); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	return cfg
}

// checkChainID compares the RPC chain id with the configured one. A mismatch
// is only logged, unless the chain was pinned with --network.
func checkChainID(logger *zap.Logger, cfg *config.Configuration, rpcChainID int64) {
	if rpcChainID == cfg.EVM.ChainID {
		return
	}
	fields := []zap.Field{zap.Int64("rpc", rpcChainID), zap.Int64("config", cfg.EVM.ChainID)}
	if *network != "" {
		logger.Fatal("RPC is not on network "+*network, fields...)
	}
	logger.Warn("RPC chain id differs from config", fields...)
}

// newLogger writes JSON to logs/log_YYYY-MM-DD.txt and console output to stderr
func newLogger(cfg *config.Configuration) (*zap.Logger, func(), error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", *logLevel)
	}

	if err := os.MkdirAll(cfg.Server.LogDir, 0o755); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(cfg.Server.LogDir, fmt.Sprintf("log_%s.txt", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file for writing: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level),
	)
	logger := zap.New(core).With(zap.String("run", uuid.New().String()))

	return logger, func() {
		_ = logger.Sync()
		f.Close()
	}, nil
}
