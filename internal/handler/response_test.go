package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"

	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"loop stopped", wallet.ErrLoopStopped, http.StatusServiceUnavailable, "unavailable"},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, "unavailable"},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "unavailable"},
		{"crypto", model.ErrCrypto, http.StatusUnauthorized, "crypto"},
		{"locked out", model.ErrLockedOut, http.StatusTooManyRequests, "locked_out"},
		{"state", &model.StateError{Op: "logout", Phase: "unauthenticated"}, http.StatusConflict, "state"},
		{"exists", &model.FileExistsError{Message: "exists"}, http.StatusConflict, "exists"},
		{"no wallet", wallet.ErrNoWalletLoaded, http.StatusNotFound, "no_wallet"},
		{"busy", wallet.ErrRefreshInProgress, http.StatusConflict, "busy"},
		{"network", fmt.Errorf("%w: timeout", model.ErrNetwork), http.StatusBadGateway, "network"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.Equal(t, tc.code, resp.Code)
			require.Equal(t, tc.err.Error(), resp.Error)
		})
	}
}
