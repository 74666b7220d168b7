package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Configuration struct {
	// Server config
	Server struct {
		Listen    string `yaml:"listen"`
		RedisPort int    `yaml:"redis_port" split_words:"true"`
		RedisHost string `yaml:"redis_host" split_words:"true"`
		// "redis" or "memory", memory state is lost on restart
		Store  string `yaml:"store"`
		LogDir string `yaml:"log_dir" split_words:"true"`
	} `yaml:"server"`
	// EVM-related config
	EVM struct {
		// expected chain id, the RPC answer wins but a mismatch is logged
		ChainID          int64         `yaml:"chain_id" split_words:"true"`
		RPCList          []string      `yaml:"rpc_list" envconfig:"RPC_LIST"`
		StartBlock       uint64        `yaml:"start_block" split_words:"true"`
		BlockBatch       uint64        `yaml:"block_batch" split_words:"true"`
		MinConfirmations uint64        `yaml:"min_confirmations" split_words:"true"`
		PollInterval     time.Duration `yaml:"poll_interval" split_words:"true"`
	} `yaml:"EVM"`
	// per chain id addresses, merged over DefaultRegistry
	Registry Registry `yaml:"registry" ignored:"true"`
}

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

var networkToChainId = map[string]int64{
	"mainnet": 1,
	"testnet": 5,
}

// ChainID returns the well-known chain id of a network name
func ChainID(network string) (int64, bool) {
	id, ok := networkToChainId[network]
	return id, ok
}

// SetNetwork selects the expected chain by its network name
func (cfg *Configuration) SetNetwork(network string) error {
	id, ok := ChainID(network)
	if !ok {
		return fmt.Errorf("unknown network %q", network)
	}
	cfg.EVM.ChainID = id
	return nil
}

// DefaultRegistry holds the deployments known at build time.
// Mainnet has no deployment yet and must come from config.yml.
func DefaultRegistry() Registry {
	return Registry{
		5: {
			Token:     common.HexToAddress("0xAFD07FAB547632d574b38A72EDAE93fA23d1E7d7").Hex(),
			Treasury:  common.HexToAddress("0xdD6596F2029e6233DEFfaCa316e6A95217d4Dc34").Hex(),
			Predicate: common.HexToAddress("0xdD6596F2029e6233DEFfaCa316e6A95217d4Dc34").Hex(),
		},
	}
}

func defaults(cfg *Configuration) {
	cfg.Server.Listen = ":8080"
	cfg.Server.RedisHost = "127.0.0.1"
	cfg.Server.RedisPort = 6379
	cfg.Server.Store = StoreRedis
	cfg.Server.LogDir = "logs"
	cfg.EVM.ChainID = 5
	cfg.EVM.RPCList = []string{"https://rpc.ankr.com/eth_goerli"}
	cfg.EVM.StartBlock = 10194050
	cfg.EVM.BlockBatch = 512
	cfg.EVM.MinConfirmations = 3
	cfg.EVM.PollInterval = 10 * time.Second
}
