package config

import (
	"fmt"
	"strings"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

// ChainAddresses are the protocol contracts of one chain
type ChainAddresses struct {
	Token     string `yaml:"token"`
	Treasury  string `yaml:"treasury"`
	Predicate string `yaml:"predicate"`
}

type Registry map[int64]ChainAddresses

func (r Registry) Lookup(chainID int64) (ChainAddresses, bool) {
	a, ok := r[chainID]
	return a, ok
}

// Merge returns a copy of r with entries of other taking precedence
func (r Registry) Merge(other Registry) Registry {
	out := make(Registry, len(r)+len(other))
	for id, a := range r {
		out[id] = a
	}
	for id, a := range other {
		out[id] = a
	}
	return out
}

// Validate checks every configured address and normalizes it to checksummed form
func (r Registry) Validate() error {
	for id, a := range r {
		var err error
		if a.Token, err = checkAddress(a.Token); err != nil {
			return fmt.Errorf("registry chain %d token: %w", id, err)
		}
		if a.Treasury, err = checkAddress(a.Treasury); err != nil {
			return fmt.Errorf("registry chain %d treasury: %w", id, err)
		}
		if a.Predicate, err = checkAddress(a.Predicate); err != nil {
			return fmt.Errorf("registry chain %d predicate: %w", id, err)
		}
		r[id] = a
	}
	return nil
}

func checkAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	// only mixed case carries a checksum
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hex != strings.ToLower(hex) && hex != strings.ToUpper(hex) {
		if err := ethav.Validate(s); err != nil {
			return "", fmt.Errorf("address %q: %w", s, err)
		}
	}
	addr := common.HexToAddress(s)
	// the zero address marks mints and burns
	if addr == (common.Address{}) {
		return "", fmt.Errorf("zero address is not a contract")
	}
	return addr.Hex(), nil
}
