package handlers

import (
	"math/big"
	"time"

	"rootledger/types"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type APIStateResponse struct {
	Status       string `json:"status"`
	ChainID      int64  `json:"chainId"`
	ScannedBlock int64  `json:"scannedBlock"`
}

// amounts are decimal strings, JSON numbers lose precision above 2^53

type APIAccount struct {
	ID      string `json:"id"`
	Token   string `json:"token"`
	Holder  string `json:"holder"`
	Balance string `json:"balance"`
}

type APIToken struct {
	ID                string `json:"id"`
	TotalSupply       string `json:"totalSupply"`
	CirculatingSupply string `json:"circulatingSupply"`
}

type APILocked struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

type APITransfer struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	BlockHeight uint64 `json:"blockHeight"`
	Timestamp   int64  `json:"timestamp"`
	TxHash      string `json:"txHash"`
}

type APICrossChainTransfer struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	FromRoot    bool   `json:"fromRoot"`
	Amount      string `json:"amount"`
	From        string `json:"from"`
	To          string `json:"to"`
	TxHash      string `json:"txHash"`
	Timestamp   int64  `json:"timestamp"`
	BlockHeight uint64 `json:"blockHeight"`
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func toAPIAccount(a *types.Account) *APIAccount {
	return &APIAccount{ID: a.ID, Token: a.Token, Holder: a.Holder, Balance: amount(a.Balance)}
}

func toAPIToken(t *types.Token) *APIToken {
	return &APIToken{ID: t.ID, TotalSupply: amount(t.TotalSupply), CirculatingSupply: amount(t.CirculatingSupply)}
}

func toAPICrossChainTransfer(xc *types.CrossChainTransfer) *APICrossChainTransfer {
	return &APICrossChainTransfer{
		ID:          xc.ID,
		Token:       xc.Token,
		FromRoot:    xc.FromRoot,
		Amount:      amount(xc.Amount),
		From:        xc.From,
		To:          xc.To,
		TxHash:      xc.TxHash,
		Timestamp:   unix(xc.Timestamp),
		BlockHeight: xc.BlockHeight,
	}
}
