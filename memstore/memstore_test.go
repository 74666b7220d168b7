package memstore

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"rootledger/ledger"
	"rootledger/types"
)

func TestStore_AccountRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	got, err := store.GetAccount(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing account, got %v, %v", got, err)
	}

	a := &types.Account{ID: "t-h", Token: "t", Holder: "h", Balance: big.NewInt(5)}
	if err := store.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}

	// modify original after save
	a.Balance.SetInt64(99)

	got, err = store.GetAccount(ctx, "t-h")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Balance.Int64() != 5 {
		t.Errorf("Store should keep a copy, got balance %s", got.Balance)
	}

	// modify returned value
	got.Balance.SetInt64(7)
	again, _ := store.GetAccount(ctx, "t-h")
	if again.Balance.Int64() != 5 {
		t.Errorf("Store should return a copy, got balance %s", again.Balance)
	}
}

func TestStore_CreateTransferDuplicate(t *testing.T) {
	store := New()
	ctx := context.Background()

	tr := &types.Transfer{ID: "0xabc-1", Amount: big.NewInt(1)}
	if err := store.CreateTransfer(ctx, tr); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := store.CreateTransfer(ctx, &types.Transfer{ID: "0xabc-1", Amount: big.NewInt(2)})
	if !errors.Is(err, ledger.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetTransfer(ctx, "0xabc-1")
	if got.Amount.Int64() != 1 {
		t.Errorf("original record replaced, amount %s", got.Amount)
	}
}

func TestStore_CreateCrossChainDuplicate(t *testing.T) {
	store := New()
	ctx := context.Background()

	xc := &types.CrossChainTransfer{ID: "0xabc-1", FromRoot: true, Amount: big.NewInt(1)}
	if err := store.CreateCrossChainTransfer(ctx, xc); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := store.CreateCrossChainTransfer(ctx, xc); !errors.Is(err, ledger.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	all, _ := store.CrossChainTransfers(ctx)
	if n := len(all); n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}

func TestStore_InvalidInput(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.SaveToken(ctx, nil); !errors.Is(err, ledger.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.SaveLockedERC20(ctx, &types.LockedERC20{}); !errors.Is(err, ledger.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
	if err := store.CreateTransfer(ctx, &types.Transfer{}); !errors.Is(err, ledger.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestStore_CommitAllOrNothing(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateCrossChainTransfer(ctx, &types.CrossChainTransfer{ID: "x", Amount: big.NewInt(1)}); err != nil {
		t.Fatalf("CreateCrossChainTransfer failed: %v", err)
	}

	err := store.Commit(ctx, &ledger.Batch{
		Accounts:            []*types.Account{{ID: "t-h", Balance: big.NewInt(5)}},
		Transfers:           []*types.Transfer{{ID: "a", Amount: big.NewInt(5)}},
		CrossChainTransfers: []*types.CrossChainTransfer{{ID: "x", Amount: big.NewInt(2)}},
	})
	if !errors.Is(err, ledger.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if a, _ := store.GetAccount(ctx, "t-h"); a != nil {
		t.Errorf("account written by a rejected batch")
	}
	if tr, _ := store.GetTransfer(ctx, "a"); tr != nil {
		t.Errorf("transfer written by a rejected batch")
	}

	// the same id twice in one batch is rejected too
	err = store.Commit(ctx, &ledger.Batch{
		Transfers: []*types.Transfer{{ID: "b", Amount: big.NewInt(1)}, {ID: "b", Amount: big.NewInt(2)}},
	})
	if !errors.Is(err, ledger.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey for repeated id, got %v", err)
	}

	err = store.Commit(ctx, &ledger.Batch{
		Accounts:                    []*types.Account{{ID: "t-h", Balance: big.NewInt(5)}},
		ReplacedCrossChainTransfers: []*types.CrossChainTransfer{{ID: "x", Amount: big.NewInt(3)}},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if a, _ := store.GetAccount(ctx, "t-h"); a == nil || a.Balance.Int64() != 5 {
		t.Errorf("account not written, got %v", a)
	}
	if xc, _ := store.GetCrossChainTransfer(ctx, "x"); xc.Amount.Int64() != 3 {
		t.Errorf("cross chain record not replaced, got %s", xc.Amount)
	}
}
