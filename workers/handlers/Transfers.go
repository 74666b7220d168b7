package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

func (a *API) Transfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := a.Store.GetTransfer(r.Context(), id)
	if err != nil {
		a.Log.Error("get transfer", zap.String("id", id), zap.Error(err))
		responseError(w, "", "store error", http.StatusInternalServerError)
		return
	}
	if t == nil {
		responseError(w, "id", "transfer not found", http.StatusNotFound)
		return
	}

	responseJSON(w, &APITransfer{
		ID:          t.ID,
		Token:       t.Token,
		From:        t.From,
		To:          t.To,
		Amount:      amount(t.Amount),
		BlockHeight: t.BlockHeight,
		Timestamp:   unix(t.Timestamp),
		TxHash:      t.TxHash,
	}, http.StatusOK)
}

func (a *API) CrossChainTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	xc, err := a.Store.GetCrossChainTransfer(r.Context(), id)
	if err != nil {
		a.Log.Error("get cross chain transfer", zap.String("id", id), zap.Error(err))
		responseError(w, "", "store error", http.StatusInternalServerError)
		return
	}
	if xc == nil {
		responseError(w, "id", "cross chain transfer not found", http.StatusNotFound)
		return
	}

	responseJSON(w, toAPICrossChainTransfer(xc), http.StatusOK)
}

func (a *API) CrossChainTransfers(w http.ResponseWriter, r *http.Request) {
	all, err := a.Lister.CrossChainTransfers(r.Context())
	if err != nil {
		a.Log.Error("list cross chain transfers", zap.Error(err))
		responseJSON(w, nil, http.StatusInternalServerError)
		return
	}

	out := make([]*APICrossChainTransfer, 0, len(all))
	for _, xc := range all {
		out = append(out, toAPICrossChainTransfer(xc))
	}
	responseJSON(w, out, http.StatusOK)
}
