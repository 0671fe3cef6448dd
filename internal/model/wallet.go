package model

import (
	"github.com/lightningnetwork/lnd/fn/v2"
)

// WalletState is the in-memory view of the loaded wallet. It is owned by the
// wallet controller and mutated only on the control loop.
type WalletState struct {
	Address   fn.Option[string]
	Network   Network
	Balance   fn.Option[uint64] // MIST
	Loading   bool              // single-flight guard for balance refresh
	LastError fn.Option[string]
}

// NewWalletState returns an empty state bound to network.
func NewWalletState(network Network) WalletState {
	return WalletState{
		Address:   fn.None[string](),
		Network:   network,
		Balance:   fn.None[uint64](),
		LastError: fn.None[string](),
	}
}

// IsLoaded reports whether an address has been imported.
func (s *WalletState) IsLoaded() bool {
	return s.Address.IsSome()
}

// Reset drops everything but the selected network.
func (s *WalletState) Reset() {
	*s = NewWalletState(s.Network)
}

// WalletStatusResponse represents response for GET /wallet/status
type WalletStatusResponse struct {
	Phase         string  `json:"phase"`
	Network       Network `json:"network"`
	Address       string  `json:"address,omitempty"`
	ExplorerURL   string  `json:"explorer_url,omitempty"`
	QR            string  `json:"QR,omitempty"`
	Balance       string  `json:"balance_mist,omitempty"`
	Loading       bool    `json:"loading"`
	LastError     string  `json:"last_error,omitempty"`
	HasSavedKey   bool    `json:"has_saved_key"`
	StatusMessage string  `json:"status"`
}

// ImportRequest represents body for POST /wallet/import
type ImportRequest struct {
	PrivateKey string `json:"private_key"`
}

// NetworkRequest represents body for POST /wallet/network
type NetworkRequest struct {
	Network string `json:"network"`
}
