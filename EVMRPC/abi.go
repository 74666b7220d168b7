package EVMRPC

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// bridgeABI covers the token Transfer event and the ERC20Predicate surface
const bridgeABI = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"LockedERC20","anonymous":false,"inputs":[
		{"name":"depositor","type":"address","indexed":true},
		{"name":"depositReceiver","type":"address","indexed":true},
		{"name":"rootToken","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"ExitedERC20","anonymous":false,"inputs":[
		{"name":"exitor","type":"address","indexed":true},
		{"name":"rootToken","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"function","name":"exitTokens","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"","type":"address"},
		{"name":"rootToken","type":"address"},
		{"name":"log","type":"bytes"}]}
]`

var BridgeABI = mustParseABI(bridgeABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

var (
	TopicTransfer    = BridgeABI.Events["Transfer"].ID
	TopicLockedERC20 = BridgeABI.Events["LockedERC20"].ID
	TopicExitedERC20 = BridgeABI.Events["ExitedERC20"].ID
)
