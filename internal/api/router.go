package api

import (
	"net/http"

	_ "github.com/AlexZinkM/sui-local-wallet/docs"
	"github.com/AlexZinkM/sui-local-wallet/internal/handler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus
	mux.Handle("/metrics", promhttp.Handler())

	// Auth endpoints
	mux.HandleFunc("/auth/setup", h.Setup)
	mux.HandleFunc("/auth/login", h.Login)
	mux.HandleFunc("/auth/logout", h.Logout)
	mux.HandleFunc("/auth/change", h.ChangePassword)
	mux.HandleFunc("/auth/reset", h.ResetPassword)

	// Wallet endpoints
	mux.HandleFunc("/wallet/status", h.Status)
	mux.HandleFunc("/wallet/import", h.Import)
	mux.HandleFunc("/wallet/generate", h.Generate)
	mux.HandleFunc("/wallet/clear", h.Clear)
	mux.HandleFunc("/wallet/network", h.Network)
	mux.HandleFunc("/wallet/refresh", h.Refresh)
	mux.HandleFunc("/wallet/balance", h.Balance)
	mux.HandleFunc("/wallet/key", h.ForgetKey)

	return mux
}
