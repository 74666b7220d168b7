package handlers

import (
	"net/http"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	responsePlain(w, []byte("ok"), http.StatusOK)
}
