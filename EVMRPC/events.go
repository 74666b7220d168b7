package EVMRPC

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"rootledger/types"
)

type EventKind string

const (
	KindTransfer    EventKind = "transfer"
	KindLockedERC20 EventKind = "locked_erc20"
	KindExitToken   EventKind = "exit_token"
)

// Event is one decoded item of the chain, exactly one payload is set
type Event struct {
	Kind        EventKind
	BlockNumber uint64
	Transfer    *types.TransferEvent
	Lock        *types.LockedERC20Event
	Exit        *types.ExitTokenTransaction
}

type EventQuery struct {
	FromBlock uint64
	ToBlock   uint64
	Token     common.Address
	Predicate common.Address
}

// chainReader is the part of ethclient.Client the scanner needs
type chainReader interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
}

func fetchEvents(ctx context.Context, client chainReader, q EventQuery, logger *zap.Logger) ([]Event, error) {
	logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(q.FromBlock),
		ToBlock:   new(big.Int).SetUint64(q.ToBlock),
		Addresses: []common.Address{q.Token, q.Predicate},
		Topics:    [][]common.Hash{{TopicTransfer, TopicLockedERC20, TopicExitedERC20}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter logs: %w", err)
	}

	times := make(map[uint64]uint64)
	blockTime := func(number uint64) (uint64, error) {
		if ts, ok := times[number]; ok {
			return ts, nil
		}
		header, err := client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return 0, fmt.Errorf("header %d: %w", number, err)
		}
		times[number] = header.Time
		return header.Time, nil
	}

	events := make([]Event, 0, len(logs))
	exits := make(map[common.Hash]bool)

	for _, l := range logs {
		if l.Removed || len(l.Topics) == 0 {
			continue
		}
		ts, err := blockTime(l.BlockNumber)
		if err != nil {
			return nil, err
		}

		switch {
		case l.Address == q.Token && l.Topics[0] == TopicTransfer:
			events = append(events, Event{Kind: KindTransfer, BlockNumber: l.BlockNumber, Transfer: DecodeTransfer(l, ts)})

		case l.Address == q.Predicate && l.Topics[0] == TopicLockedERC20:
			ev := DecodeLockedERC20(l, ts)
			// only deposits of the configured root token
			if ev.Args != nil && ev.Args.RootToken != q.Token {
				continue
			}
			events = append(events, Event{Kind: KindLockedERC20, BlockNumber: l.BlockNumber, Lock: ev})

		case l.Address == q.Predicate && l.Topics[0] == TopicExitedERC20:
			if exits[l.TxHash] {
				continue
			}
			exits[l.TxHash] = true

			tx, _, err := client.TransactionByHash(ctx, l.TxHash)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", l.TxHash.Hex(), err)
			}
			exit, ok := DecodeExitTokens(tx, q.Predicate, l, ts)
			if !ok {
				// exit routed through another contract, the call is not ours to decode
				logger.Warn("skip exit not sent to predicate", zap.String("txHash", l.TxHash.Hex()))
				continue
			}
			if exit.Args != nil && exit.Args.RootToken != q.Token {
				continue
			}
			events = append(events, Event{Kind: KindExitToken, BlockNumber: l.BlockNumber, Exit: exit})
		}
	}

	return events, nil
}

func unpackLog(ev abi.Event, l ethtypes.Log) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := ev.Inputs.UnpackIntoMap(out, l.Data); err != nil {
		return nil, err
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(l.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("%s: want %d topics, got %d", ev.Name, len(indexed)+1, len(l.Topics))
	}
	if err := abi.ParseTopicsIntoMap(out, indexed, l.Topics[1:]); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTransfer decodes a Transfer log, Args stays nil when the log does not decode
func DecodeTransfer(l ethtypes.Log, blockTime uint64) *types.TransferEvent {
	ev := &types.TransferEvent{
		Address:         l.Address,
		TransactionHash: l.TxHash,
		LogIndex:        l.Index,
		BlockNumber:     l.BlockNumber,
		BlockTimestamp:  blockTime,
	}

	values, err := unpackLog(BridgeABI.Events["Transfer"], l)
	if err != nil {
		return ev
	}
	from, ok1 := values["from"].(common.Address)
	to, ok2 := values["to"].(common.Address)
	value, ok3 := values["value"].(*big.Int)
	if ok1 && ok2 && ok3 {
		ev.Args = &types.TransferArgs{From: from, To: to, Value: value}
	}
	return ev
}

func DecodeLockedERC20(l ethtypes.Log, blockTime uint64) *types.LockedERC20Event {
	ev := &types.LockedERC20Event{
		TransactionHash: l.TxHash,
		LogIndex:        l.Index,
		BlockNumber:     l.BlockNumber,
		BlockTimestamp:  blockTime,
	}

	values, err := unpackLog(BridgeABI.Events["LockedERC20"], l)
	if err != nil {
		return ev
	}
	depositor, ok1 := values["depositor"].(common.Address)
	receiver, ok2 := values["depositReceiver"].(common.Address)
	rootToken, ok3 := values["rootToken"].(common.Address)
	amount, ok4 := values["amount"].(*big.Int)
	if ok1 && ok2 && ok3 && ok4 {
		ev.Args = &types.LockedERC20Args{
			Depositor:       depositor,
			DepositReceiver: receiver,
			RootToken:       rootToken,
			Amount:          amount,
		}
	}
	return ev
}

// DecodeExitTokens decodes an exitTokens call sent straight to the predicate.
// ok is false when the transaction is not such a call.
func DecodeExitTokens(tx *ethtypes.Transaction, predicate common.Address, l ethtypes.Log, blockTime uint64) (*types.ExitTokenTransaction, bool) {
	method := BridgeABI.Methods["exitTokens"]
	input := tx.Data()
	if tx.To() == nil || *tx.To() != predicate || len(input) < 4 || !bytes.Equal(input[:4], method.ID) {
		return nil, false
	}

	exit := &types.ExitTokenTransaction{
		Hash:             tx.Hash(),
		TransactionIndex: l.TxIndex,
		BlockNumber:      l.BlockNumber,
		BlockTimestamp:   blockTime,
	}

	values, err := method.Inputs.Unpack(input[4:])
	if err != nil || len(values) != 3 {
		return exit, true
	}
	contract, ok1 := values[0].(common.Address)
	rootToken, ok2 := values[1].(common.Address)
	raw, ok3 := values[2].([]byte)
	if ok1 && ok2 && ok3 {
		exit.Args = &types.ExitTokenArgs{ContractAddress: contract, RootToken: rootToken, Log: raw}
	}
	return exit, true
}
