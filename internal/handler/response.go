package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("Request failed: %v", err)
	}

	code := model.ErrorCode(err)
	switch {
	case status == http.StatusServiceUnavailable:
		code = model.CodeUnavailable
	case errors.Is(err, wallet.ErrNoWalletLoaded):
		code = "no_wallet"
	case errors.Is(err, wallet.ErrRefreshInProgress):
		code = "busy"
	}

	writeJSON(w, status, model.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func statusFor(err error) int {
	switch {
	case model.IsFileExistsError(err):
		return http.StatusConflict
	case errors.Is(err, model.ErrLockedOut):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrCrypto):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrState):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrRefreshInProgress):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrNoWalletLoaded):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, wallet.ErrLoopStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  "validation",
		})
		return false
	}
	return true
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed. Should be "+method, http.StatusMethodNotAllowed)
		return false
	}
	return true
}
