package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
)

func responseJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func responsePlain(w http.ResponseWriter, data []byte, code int) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	w.Write(data)
}

func responseError(w http.ResponseWriter, field, message string, code int) {
	responseJSON(w, &APIResponse{
		Status:  "error",
		Field:   field,
		Message: message,
	}, code)
}

// parseAddress accepts lower, upper or correctly checksummed hex
func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hex != strings.ToLower(hex) && hex != strings.ToUpper(hex) {
		if err := ethav.Validate(s); err != nil {
			return common.Address{}, err
		}
	}
	return common.HexToAddress(s), nil
}
