package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"rootledger/ledger"
)

func (a *API) Account(w http.ResponseWriter, r *http.Request) {
	token, err := parseAddress(chi.URLParam(r, "token"))
	if err != nil {
		responseError(w, "token", "No ethereum address or invalid address provided", http.StatusBadRequest)
		return
	}
	holder, err := parseAddress(chi.URLParam(r, "holder"))
	if err != nil {
		responseError(w, "holder", "No ethereum address or invalid address provided", http.StatusBadRequest)
		return
	}

	// unknown holders have a zero balance
	account, err := ledger.NewBalanceLedger(a.Store).Get(r.Context(), token, holder)
	if err != nil {
		a.Log.Error("get account", zap.Error(err))
		responseError(w, "", "store error", http.StatusInternalServerError)
		return
	}

	responseJSON(w, toAPIAccount(account), http.StatusOK)
}
