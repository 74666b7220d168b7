package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// events as delivered by the scanner, Args is nil when the log could not be decoded

type TransferArgs struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

type TransferEvent struct {
	Address         common.Address // token contract that emitted the log
	Args            *TransferArgs
	TransactionHash common.Hash
	LogIndex        uint
	BlockNumber     uint64
	BlockTimestamp  uint64
}

type LockedERC20Args struct {
	Depositor       common.Address
	DepositReceiver common.Address
	RootToken       common.Address
	Amount          *big.Int
}

type LockedERC20Event struct {
	Args            *LockedERC20Args
	TransactionHash common.Hash
	LogIndex        uint
	BlockNumber     uint64
	BlockTimestamp  uint64
}

// ExitTokenArgs mirrors exitTokens(address, address rootToken, bytes log)
type ExitTokenArgs struct {
	ContractAddress common.Address
	RootToken       common.Address
	Log             []byte
}

type ExitTokenTransaction struct {
	Args             *ExitTokenArgs
	Hash             common.Hash
	TransactionIndex uint
	BlockNumber      uint64
	BlockTimestamp   uint64
}

// BlockTime converts a block timestamp in seconds
func BlockTime(ts uint64) time.Time {
	return time.Unix(int64(ts), 0).UTC()
}
