// Package memstore is an in-memory ledger.Store, used by tests and by
// replays that should not touch Redis.
package memstore

import (
	"context"
	"math/big"
	"sync"

	"rootledger/ledger"
	"rootledger/types"
)

type Store struct {
	mu          sync.RWMutex
	accounts    map[string]*types.Account
	tokens      map[string]*types.Token
	locked      map[string]*types.LockedERC20
	transfers   map[string]*types.Transfer
	xcTransfers map[string]*types.CrossChainTransfer
	scanned     map[int64]int64
}

func New() *Store {
	return &Store{
		accounts:    make(map[string]*types.Account),
		tokens:      make(map[string]*types.Token),
		locked:      make(map[string]*types.LockedERC20),
		transfers:   make(map[string]*types.Transfer),
		xcTransfers: make(map[string]*types.CrossChainTransfer),
		scanned:     make(map[int64]int64),
	}
}

var _ ledger.Store = (*Store)(nil)

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func (s *Store) GetAccount(_ context.Context, id string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	c := *a
	c.Balance = copyInt(a.Balance)
	return &c, nil
}

func (s *Store) SaveAccount(_ context.Context, a *types.Account) error {
	if a == nil || a.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *a
	c.Balance = copyInt(a.Balance)
	s.accounts[a.ID] = &c
	return nil
}

func (s *Store) GetToken(_ context.Context, id string) (*types.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[id]
	if !ok {
		return nil, nil
	}
	c := *t
	c.TotalSupply = copyInt(t.TotalSupply)
	c.CirculatingSupply = copyInt(t.CirculatingSupply)
	return &c, nil
}

func (s *Store) SaveToken(_ context.Context, t *types.Token) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *t
	c.TotalSupply = copyInt(t.TotalSupply)
	c.CirculatingSupply = copyInt(t.CirculatingSupply)
	s.tokens[t.ID] = &c
	return nil
}

func (s *Store) GetLockedERC20(_ context.Context, id string) (*types.LockedERC20, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locked[id]
	if !ok {
		return nil, nil
	}
	c := *l
	c.Amount = copyInt(l.Amount)
	return &c, nil
}

func (s *Store) SaveLockedERC20(_ context.Context, l *types.LockedERC20) error {
	if l == nil || l.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *l
	c.Amount = copyInt(l.Amount)
	s.locked[l.ID] = &c
	return nil
}

func (s *Store) CreateTransfer(_ context.Context, t *types.Transfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transfers[t.ID]; exists {
		return ledger.ErrDuplicateKey
	}
	c := *t
	c.Amount = copyInt(t.Amount)
	s.transfers[t.ID] = &c
	return nil
}

func (s *Store) GetTransfer(_ context.Context, id string) (*types.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return nil, nil
	}
	c := *t
	c.Amount = copyInt(t.Amount)
	return &c, nil
}

func (s *Store) CreateCrossChainTransfer(_ context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.xcTransfers[t.ID]; exists {
		return ledger.ErrDuplicateKey
	}
	c := *t
	c.Amount = copyInt(t.Amount)
	s.xcTransfers[t.ID] = &c
	return nil
}

func (s *Store) ReplaceCrossChainTransfer(_ context.Context, t *types.CrossChainTransfer) error {
	if t == nil || t.ID == "" {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *t
	c.Amount = copyInt(t.Amount)
	s.xcTransfers[t.ID] = &c
	return nil
}

// Commit checks every created id before the first write, under one lock
func (s *Store) Commit(_ context.Context, b *ledger.Batch) error {
	if b == nil {
		return ledger.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	for _, t := range b.Transfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		if _, exists := s.transfers[t.ID]; exists || seen["t:"+t.ID] {
			return ledger.ErrDuplicateKey
		}
		seen["t:"+t.ID] = true
	}
	for _, t := range b.CrossChainTransfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
		if _, exists := s.xcTransfers[t.ID]; exists || seen["x:"+t.ID] {
			return ledger.ErrDuplicateKey
		}
		seen["x:"+t.ID] = true
	}
	for _, a := range b.Accounts {
		if a == nil || a.ID == "" {
			return ledger.ErrInvalidInput
		}
	}
	for _, t := range b.Tokens {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
	}
	for _, l := range b.Locked {
		if l == nil || l.ID == "" {
			return ledger.ErrInvalidInput
		}
	}
	for _, t := range b.ReplacedCrossChainTransfers {
		if t == nil || t.ID == "" {
			return ledger.ErrInvalidInput
		}
	}

	for _, t := range b.Transfers {
		c := *t
		c.Amount = copyInt(t.Amount)
		s.transfers[t.ID] = &c
	}
	for _, list := range [][]*types.CrossChainTransfer{b.CrossChainTransfers, b.ReplacedCrossChainTransfers} {
		for _, t := range list {
			c := *t
			c.Amount = copyInt(t.Amount)
			s.xcTransfers[t.ID] = &c
		}
	}
	for _, a := range b.Accounts {
		c := *a
		c.Balance = copyInt(a.Balance)
		s.accounts[a.ID] = &c
	}
	for _, t := range b.Tokens {
		c := *t
		c.TotalSupply = copyInt(t.TotalSupply)
		c.CirculatingSupply = copyInt(t.CirculatingSupply)
		s.tokens[t.ID] = &c
	}
	for _, l := range b.Locked {
		c := *l
		c.Amount = copyInt(l.Amount)
		s.locked[l.ID] = &c
	}
	return nil
}

func (s *Store) GetCrossChainTransfer(_ context.Context, id string) (*types.CrossChainTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.xcTransfers[id]
	if !ok {
		return nil, nil
	}
	c := *t
	c.Amount = copyInt(t.Amount)
	return &c, nil
}

// CrossChainTransfers returns all cross chain records, in no particular order
func (s *Store) CrossChainTransfers(_ context.Context) ([]*types.CrossChainTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.CrossChainTransfer, 0, len(s.xcTransfers))
	for _, t := range s.xcTransfers {
		c := *t
		c.Amount = copyInt(t.Amount)
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) GetEVMScannedBlock(_ context.Context, chainID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, ok := s.scanned[chainID]
	if !ok {
		return -1, nil
	}
	return block, nil
}

func (s *Store) SetEVMScannedBlock(_ context.Context, chainID int64, blockHeight int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanned[chainID] = blockHeight
	return nil
}
