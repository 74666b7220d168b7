package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"rootledger/ledger"
)

func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	token, err := parseAddress(chi.URLParam(r, "token"))
	if err != nil {
		responseError(w, "token", "No ethereum address or invalid address provided", http.StatusBadRequest)
		return
	}

	t, err := ledger.NewSupplyTracker(a.Store, a.Log).Get(r.Context(), token)
	if err != nil {
		a.Log.Error("get token", zap.Error(err))
		responseError(w, "", "store error", http.StatusInternalServerError)
		return
	}

	responseJSON(w, toAPIToken(t), http.StatusOK)
}

func (a *API) Locked(w http.ResponseWriter, r *http.Request) {
	token, err := parseAddress(chi.URLParam(r, "token"))
	if err != nil {
		responseError(w, "token", "No ethereum address or invalid address provided", http.StatusBadRequest)
		return
	}

	locked, err := ledger.NewEscrowLedger(a.Store).Get(r.Context(), token)
	if err != nil {
		a.Log.Error("get locked", zap.Error(err))
		responseError(w, "", "store error", http.StatusInternalServerError)
		return
	}

	responseJSON(w, &APILocked{ID: locked.ID, Amount: amount(locked.Amount)}, http.StatusOK)
}
