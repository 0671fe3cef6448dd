package handler

import (
	"net/http"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"
)

// Setup handles POST /auth/setup
// @Summary      Set the first password
// @Description  Configures the wallet password and logs in. Only allowed before any password exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.PasswordRequest  true  "Password"
// @Success      200      {object}  model.AuthResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /auth/setup [post]
func (h *WalletHandler) Setup(w http.ResponseWriter, r *http.Request) {
	h.withPassword(w, r, func(c *wallet.Controller, password []byte) (model.AuthResponse, error) {
		if err := c.SetPassword(password); err != nil {
			return model.AuthResponse{}, err
		}
		return authResponse(c, false), nil
	})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Verifies the password and silently restores the saved wallet
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.PasswordRequest  true  "Password"
// @Success      200      {object}  model.AuthResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /auth/login [post]
func (h *WalletHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.withPassword(w, r, func(c *wallet.Controller, password []byte) (model.AuthResponse, error) {
		restored, err := c.Login(password)
		if err != nil {
			return model.AuthResponse{}, err
		}
		return authResponse(c, restored), nil
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Clears the session password and the loaded wallet. Saved files are kept.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.AuthResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /auth/logout [post]
func (h *WalletHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authAction(w, r, func(c *wallet.Controller) error {
		return c.Logout()
	})
}

// ChangePassword handles POST /auth/change
// @Summary      Change password
// @Description  Replaces the password and re-encrypts the saved key
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChangePasswordRequest  true  "Old and new password"
// @Success      200      {object}  model.AuthResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /auth/change [post]
func (h *WalletHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	oldPassword := []byte(req.OldPassword)
	newPassword := []byte(req.NewPassword)
	defer clear(oldPassword)
	defer clear(newPassword)

	h.authAction(w, r, func(c *wallet.Controller) error {
		return c.ChangePassword(oldPassword, newPassword)
	})
}

// ResetPassword handles POST /auth/reset
// @Summary      Reset password
// @Description  Deletes the password and the saved key. The wallet must be imported again.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.AuthResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /auth/reset [post]
func (h *WalletHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	h.authAction(w, r, func(c *wallet.Controller) error {
		return c.ResetPassword()
	})
}

func (h *WalletHandler) withPassword(w http.ResponseWriter, r *http.Request,
	f func(*wallet.Controller, []byte) (model.AuthResponse, error)) {

	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	var resp model.AuthResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		var err error
		resp, err = f(c, password)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) authAction(w http.ResponseWriter, r *http.Request,
	f func(*wallet.Controller) error) {

	if !allow(w, r, http.MethodPost) {
		return
	}

	var resp model.AuthResponse
	err := h.loop.Do(r.Context(), func(c *wallet.Controller) error {
		if err := f(c); err != nil {
			return err
		}
		resp = authResponse(c, false)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func authResponse(c *wallet.Controller, restored bool) model.AuthResponse {
	return model.AuthResponse{
		Success:  true,
		Phase:    c.Phase().String(),
		Message:  c.StatusMessage(),
		Restored: restored,
		Address:  c.State().Address.UnwrapOr(""),
	}
}
