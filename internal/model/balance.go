package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Address  string  `json:"address"`
	Network  Network `json:"network"`
	MIST     string  `json:"mist"`
	SUI      string  `json:"sui"`
	Rate     string  `json:"rate,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Fiat     string  `json:"fiat_amount,omitempty"`
	Loading  bool    `json:"loading"`
	Stale    bool    `json:"stale"`
	Error    string  `json:"last_error,omitempty"`
}
