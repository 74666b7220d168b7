package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// exitLog is the receipt log embedded in exitTokens calldata: [address, [topics], data]
type exitLog struct {
	Address common.Address
	Topics  [][]byte
	Data    []byte
}

// DecodeExitLog returns the withdrawer (topic 1) and the withdrawn amount (data)
func DecodeExitLog(raw []byte) (common.Address, *big.Int, error) {
	if len(raw) == 0 {
		return common.Address{}, nil, fmt.Errorf("%w: empty log", ErrDecode)
	}
	var l exitLog
	if err := rlp.DecodeBytes(raw, &l); err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(l.Topics) < 2 {
		return common.Address{}, nil, fmt.Errorf("%w: want at least 2 topics, got %d", ErrDecode, len(l.Topics))
	}
	topic := l.Topics[1]
	if len(topic) > common.HashLength {
		return common.Address{}, nil, fmt.Errorf("%w: topic of %d bytes", ErrDecode, len(topic))
	}

	// topics are 32 byte words, the address sits in the low 20 bytes
	withdrawer := common.BytesToAddress(topic)
	amount := new(big.Int).SetBytes(l.Data)
	return withdrawer, amount, nil
}
