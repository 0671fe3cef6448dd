package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"
)

// PriceSource quotes SUI in a fiat currency.
type PriceSource interface {
	GetSUIRate(ctx context.Context, currency string) (string, error)
}

// WalletHandler serves the local wallet API. Every controller access goes
// through the wallet loop.
type WalletHandler struct {
	loop     *wallet.Loop
	prices   PriceSource
	currency string
}

// NewWalletHandler creates a WalletHandler. prices may be nil to disable
// fiat conversion.
func NewWalletHandler(loop *wallet.Loop, prices PriceSource, currency string) *WalletHandler {
	return &WalletHandler{
		loop:     loop,
		prices:   prices,
		currency: currency,
	}
}

// Status handles GET /wallet/status
// @Summary      Wallet status
// @Description  Authentication phase, loaded address with QR code, cached balance and last status message
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletStatusResponse
// @Router       /wallet/status [get]
func (h *WalletHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	var resp model.WalletStatusResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		resp = c.Status()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if resp.Address != "" {
		qr, err := addressQR(resp.Address)
		if err != nil {
			log.Warnf("QR code for %s: %v", resp.Address, err)
		}
		resp.QR = qr
	}

	writeJSON(w, http.StatusOK, resp)
}

// Import handles POST /wallet/import
// @Summary      Import private key
// @Description  Imports a suiprivkey1 Bech32, Base64 or hex private key. When logged in the key is saved encrypted.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Private key"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.ImportRequest
	if !decode(w, r, &req) {
		return
	}

	var resp model.GenerateResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		c.Touch()
		addr, err := c.ImportKey(req.PrivateKey)
		if err != nil {
			return err
		}
		resp = model.GenerateResponse{
			Success: true,
			Message: c.StatusMessage(),
			Address: addr,
			Saved:   c.Saved(),
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Generate handles POST /wallet/generate
// @Summary      Generate new wallet
// @Description  Generates a new ed25519 key. Refuses to replace a saved key.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/generate [post]
func (h *WalletHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var resp model.GenerateResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		c.Touch()
		addr, err := c.GenerateKey()
		if err != nil {
			return err
		}
		resp = model.GenerateResponse{
			Success: true,
			Message: c.StatusMessage(),
			Address: addr,
			Saved:   c.Saved(),
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Clear handles POST /wallet/clear
// @Summary      Clear wallet
// @Description  Forgets the loaded wallet in memory. The saved key is kept.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletStatusResponse
// @Router       /wallet/clear [post]
func (h *WalletHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.MethodPost, func(c *wallet.Controller) error {
		c.ClearWallet()
		return nil
	})
}

// Network handles POST /wallet/network
// @Summary      Switch network
// @Description  Selects devnet, testnet or mainnet and refreshes the balance there
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.NetworkRequest  true  "Network"
// @Success      200      {object}  model.WalletStatusResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/network [post]
func (h *WalletHandler) Network(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.NetworkRequest
	if !decode(w, r, &req) {
		return
	}
	network, err := model.ParseNetwork(req.Network)
	if err != nil {
		writeError(w, err)
		return
	}

	h.mutate(w, r, http.MethodPost, func(c *wallet.Controller) error {
		c.SwitchNetwork(network)
		return nil
	})
}

// Refresh handles POST /wallet/refresh
// @Summary      Refresh balance
// @Description  Starts a balance query. Poll /wallet/status or /wallet/balance for the result.
// @Tags         wallet
// @Produce      json
// @Success      202  {object}  model.WalletStatusResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/refresh [post]
func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var resp model.WalletStatusResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		c.Touch()
		if err := c.RefreshBalance(); err != nil {
			return err
		}
		resp = c.Status()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// Balance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Last fetched balance in MIST and SUI, with fiat value when a rate is available
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	var state model.WalletState
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		state = c.State()
		if !state.IsLoaded() {
			return wallet.ErrNoWalletLoaded
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := model.BalanceResponse{
		Address: state.Address.UnwrapOr(""),
		Network: state.Network,
		Loading: state.Loading,
		Error:   state.LastError.UnwrapOr(""),
		Stale:   state.LastError.IsSome(),
	}
	state.Balance.WhenSome(func(mist uint64) {
		resp.MIST = strconv.FormatUint(mist, 10)
		resp.SUI = common.MistToSUI(mist)
		h.addFiat(r.Context(), &resp, mist)
	})

	writeJSON(w, http.StatusOK, resp)
}

// addFiat fills the fiat fields. Price failures are not fatal.
func (h *WalletHandler) addFiat(ctx context.Context, resp *model.BalanceResponse, mist uint64) {
	if h.prices == nil || h.currency == "" {
		return
	}

	rate, err := h.prices.GetSUIRate(ctx, h.currency)
	if err != nil {
		log.Warnf("Price lookup failed: %v", err)
		return
	}
	fiat, err := common.FiatValue(mist, rate)
	if err != nil {
		log.Warnf("Fiat conversion failed: %v", err)
		return
	}

	resp.Rate = rate
	resp.Currency = h.currency
	resp.Fiat = fiat
}

// ForgetKey handles DELETE /wallet/key
// @Summary      Delete saved key
// @Description  Deletes the encrypted private key file. The wallet stays loaded until logout.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletStatusResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/key [delete]
func (h *WalletHandler) ForgetKey(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.MethodDelete, func(c *wallet.Controller) error {
		return c.ForgetSavedKey()
	})
}

// mutate runs f on the loop and answers with the resulting status.
func (h *WalletHandler) mutate(w http.ResponseWriter, r *http.Request, method string,
	f func(*wallet.Controller) error) {

	if !allow(w, r, method) {
		return
	}

	var resp model.WalletStatusResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		c.Touch()
		if err := f(c); err != nil {
			return err
		}
		resp = c.Status()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
