package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

func (a *API) State(w http.ResponseWriter, r *http.Request) {
	scanned, err := a.Cursor.GetEVMScannedBlock(r.Context(), a.ChainID)
	if err != nil {
		a.Log.Error("get scanned block", zap.Error(err))
		responseJSON(w, &APIStateResponse{Status: "error", ChainID: a.ChainID, ScannedBlock: -1}, http.StatusServiceUnavailable)
		return
	}

	responseJSON(w, &APIStateResponse{
		Status:       "ok",
		ChainID:      a.ChainID,
		ScannedBlock: scanned,
	}, http.StatusOK)
}
