// Package wallet orchestrates the vault, the authentication context and the
// balance fetcher on behalf of the user.
package wallet

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/balance"
	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/keys"
	"github.com/AlexZinkM/sui-local-wallet/internal/metrics"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrRefreshInProgress is returned by RefreshBalance while a query is
	// outstanding. The wallet state is left unchanged.
	ErrRefreshInProgress = errors.New("balance refresh already in progress")

	// ErrNoWalletLoaded is returned by RefreshBalance when no address is set.
	ErrNoWalletLoaded = errors.New("no wallet loaded")
)

// Config holds the collaborators of a Controller.
type Config struct {
	Auth    *auth.Context
	Vault   *crypto.Vault
	Fetcher *balance.Fetcher
	Network model.Network
}

// Controller owns WalletState. It is not safe for concurrent use: every
// method must be called from the control loop (see Loop).
type Controller struct {
	auth    *auth.Context
	vault   *crypto.Vault
	fetcher *balance.Fetcher

	state model.WalletState
	key   *keys.SecretKey
	saved bool

	// epoch identifies the current wallet. Balance results started under an
	// older epoch are discarded.
	epoch uint64

	// refreshPending queues a refresh behind a stale in-flight query.
	refreshPending bool

	status string
}

// New creates a Controller with an empty wallet.
func New(cfg Config) *Controller {
	return &Controller{
		auth:    cfg.Auth,
		vault:   cfg.Vault,
		fetcher: cfg.Fetcher,
		state:   model.NewWalletState(cfg.Network),
		status:  "Ready",
	}
}

// State returns a copy of the wallet state.
func (c *Controller) State() model.WalletState {
	return c.state
}

// Phase returns the authentication phase.
func (c *Controller) Phase() auth.Phase {
	return c.auth.Phase()
}

// StatusMessage returns the last user-facing status line.
func (c *Controller) StatusMessage() string {
	return c.status
}

// Status returns a snapshot for display.
func (c *Controller) Status() model.WalletStatusResponse {
	resp := model.WalletStatusResponse{
		Phase:         c.auth.Phase().String(),
		Network:       c.state.Network,
		Loading:       c.state.Loading,
		LastError:     c.state.LastError.UnwrapOr(""),
		HasSavedKey:   c.vault.Exists(),
		StatusMessage: c.status,
	}
	c.state.Address.WhenSome(func(addr string) {
		resp.Address = addr
		resp.ExplorerURL = c.state.Network.AddressExplorerURL(addr)
	})
	c.state.Balance.WhenSome(func(mist uint64) {
		resp.Balance = strconv.FormatUint(mist, 10)
	})
	return resp
}

// Touch records user activity, extending an authenticated session.
func (c *Controller) Touch() {
	c.auth.Touch()
}

func (c *Controller) setStatus(format string, args ...interface{}) {
	c.status = fmt.Sprintf(format, args...)
	log.Infof("Status: %s", c.status)
}

// SetPassword configures the first password and authenticates the session.
// A key imported before the password existed is saved under it.
func (c *Controller) SetPassword(password []byte) error {
	if err := c.auth.SetPassword(password); err != nil {
		c.reportAuthError(err)
		return err
	}

	if c.key != nil {
		if err := c.saveKey(); err != nil {
			c.setStatus("Password set, but saving the wallet failed: %v", err)
			return nil
		}
		c.setStatus("Password set, wallet saved")
		return nil
	}

	c.setStatus("Password set")
	return nil
}

// Login verifies password. On success the saved key, if any, is restored
// silently. A failed restore is reported but does not fail the login.
func (c *Controller) Login(password []byte) (bool, error) {
	if err := c.auth.VerifyPassword(password); err != nil {
		c.reportAuthError(err)
		return false, err
	}

	restored, err := c.LoadSavedKey()
	switch {
	case err != nil:
		log.Errorf("Failed to restore saved wallet: %v", err)
		c.setStatus("Logged in, but the saved wallet could not be loaded: %v. "+
			"Import the key manually.", err)
		return false, nil

	case restored:
		c.setStatus("Logged in, wallet restored")

	default:
		c.setStatus("Logged in")
	}
	return restored, nil
}

// Logout clears the session password, then the in-memory wallet, then moves
// authentication back to PasswordConfigured. Saved files are kept.
func (c *Controller) Logout() error {
	if err := c.auth.Logout(c.resetWallet); err != nil {
		return err
	}
	c.setStatus("Logged out")
	return nil
}

// LoadSavedKey decrypts the saved key with the session password and imports
// it. It returns false when nothing is saved.
func (c *Controller) LoadSavedKey() (bool, error) {
	if c.auth.Phase() != auth.Authenticated {
		return false, &model.StateError{Op: "load_saved_key", Phase: c.auth.Phase().String()}
	}

	password, err := c.auth.SessionPassword()
	if err != nil {
		return false, err
	}
	defer clear(password)

	plaintext, err := c.vault.Load(password)
	metrics.VaultOperations.WithLabelValues("load", metrics.Result(err)).Inc()
	if err != nil {
		return false, err
	}

	if plaintext.IsNone() {
		return false, nil
	}
	secret := plaintext.UnwrapOr(nil)
	defer clear(secret)

	key, err := keys.ParseSecretKey(string(secret))
	if err != nil {
		return false, fmt.Errorf("%w: saved key is invalid: %w", model.ErrFormat, err)
	}
	c.adoptKey(key)
	c.saved = true
	c.requestRefresh()

	return true, nil
}

// ImportKey validates raw, derives the address and makes it the current
// wallet. When authenticated the key is also saved; a save failure is
// reported but the import stands.
func (c *Controller) ImportKey(raw string) (string, error) {
	key, err := keys.ParseSecretKey(raw)
	if err != nil {
		c.setStatus("Invalid private key: %v", err)
		return "", err
	}

	c.adoptKey(key)
	addr := key.Address()
	c.requestRefresh()
	c.saveAfterImport("Wallet imported")

	return addr, nil
}

// GenerateKey creates a new ed25519 key and makes it the current wallet.
// It refuses to replace a saved key.
func (c *Controller) GenerateKey() (string, error) {
	if c.vault.Exists() {
		return "", &model.FileExistsError{
			Message: "a saved wallet already exists, delete it first",
		}
	}

	key, err := keys.Generate()
	if err != nil {
		return "", err
	}

	c.adoptKey(key)
	c.requestRefresh()
	c.saveAfterImport("Wallet generated")

	return key.Address(), nil
}

// saveAfterImport auto-saves the current key when a session is active.
func (c *Controller) saveAfterImport(what string) {
	if c.auth.Phase() != auth.Authenticated {
		c.setStatus("%s (not saved, set a password or log in to keep it)", what)
		return
	}

	if err := c.saveKey(); err != nil {
		log.Errorf("Auto-save failed: %v", err)
		c.setStatus("%s, but saving failed: %v", what, err)
		return
	}
	c.setStatus("%s and saved", what)
}

// Saved reports whether the current key has been written to the vault.
func (c *Controller) Saved() bool {
	return c.key != nil && c.saved
}

func (c *Controller) saveKey() error {
	password, err := c.auth.SessionPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	return c.saveKeyWith(password)
}

func (c *Controller) saveKeyWith(password []byte) error {
	encoded, err := c.key.Bech32()
	if err != nil {
		return err
	}
	secret := []byte(encoded)
	defer clear(secret)

	err = c.vault.Save(secret, password)
	metrics.VaultOperations.WithLabelValues("save", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	c.saved = true
	return nil
}

// adoptKey makes key the current wallet, invalidating any in-flight query.
func (c *Controller) adoptKey(key *keys.SecretKey) {
	if c.key != nil {
		c.key.Zero()
	}
	c.key = key
	c.saved = false

	network := c.state.Network
	c.newEpoch()
	c.state = model.NewWalletState(network)
	c.state.Address = fn.Some(key.Address())

	log.Infof("Wallet %s loaded (%v)", keys.TruncateAddress(key.Address(), 8, 6), key.Scheme())
}

// resetWallet drops the key and the wallet state. The network is kept.
func (c *Controller) resetWallet() {
	if c.key != nil {
		c.key.Zero()
		c.key = nil
	}
	c.saved = false
	c.newEpoch()
	c.state.Reset()
}

func (c *Controller) newEpoch() {
	c.epoch++
	c.refreshPending = false

	// A query still in flight now belongs to the previous epoch.
	c.state.Loading = false
}

// ClearWallet forgets the current wallet in memory. Saved files are kept.
func (c *Controller) ClearWallet() {
	c.resetWallet()
	c.setStatus("Wallet cleared")
}

// SwitchNetwork selects another network and refreshes the balance there.
func (c *Controller) SwitchNetwork(network model.Network) {
	if network == c.state.Network {
		return
	}

	c.newEpoch()
	c.state.Network = network
	c.state.Balance = fn.None[uint64]()
	c.state.LastError = fn.None[string]()

	if c.state.IsLoaded() {
		c.requestRefresh()
	}
	c.setStatus("Switched to %v", network)
}

// RefreshBalance starts a balance query for the current wallet.
func (c *Controller) RefreshBalance() error {
	if c.state.Loading || c.fetcher.Busy() {
		return ErrRefreshInProgress
	}

	addr, err := c.state.Address.UnwrapOrErr(ErrNoWalletLoaded)
	if err != nil {
		c.setStatus("No wallet loaded")
		return err
	}

	req := balance.Request{
		Address: addr,
		Network: c.state.Network,
		Epoch:   c.epoch,
	}
	if !c.fetcher.Start(req) {
		return ErrRefreshInProgress
	}

	c.state.Loading = true
	c.setStatus("Refreshing balance...")
	return nil
}

// requestRefresh refreshes now, or once the stale query in flight returns.
func (c *Controller) requestRefresh() {
	err := c.RefreshBalance()
	if errors.Is(err, ErrRefreshInProgress) && !c.state.Loading {
		c.refreshPending = true
	}
}

// Tick is called once per control loop iteration. It ends an expired
// session and applies at most one finished balance query.
func (c *Controller) Tick() {
	if c.auth.Expired() {
		log.Infof("Session expired, logging out")
		if err := c.auth.Logout(c.resetWallet); err == nil {
			c.setStatus("Session expired, please log in again")
		}
	}

	res, ok := c.fetcher.Poll()
	if !ok {
		return
	}

	if !c.current(res.Request) {
		metrics.StaleResults.Inc()
		log.Debugf("Discarding stale balance result for %s", res.Address)

		if c.refreshPending {
			c.refreshPending = false
			if err := c.RefreshBalance(); err != nil {
				log.Warnf("Queued refresh failed: %v", err)
			}
		}
		return
	}

	c.state.Loading = false
	if res.Err != nil {
		c.state.LastError = fn.Some(res.Err.Error())
		c.setStatus("Failed to fetch balance: %v", res.Err)
		return
	}

	c.state.Balance = fn.Some(res.Balance)
	c.state.LastError = fn.None[string]()
	c.setStatus("Balance: %s", common.FormatSUI(res.Balance))
}

func (c *Controller) current(req balance.Request) bool {
	if req.Epoch != c.epoch || req.Network != c.state.Network {
		return false
	}
	return c.state.Address.UnwrapOr("") == req.Address
}

// ChangePassword replaces the password. The saved key, if any, is
// re-encrypted under the new one.
func (c *Controller) ChangePassword(oldPassword, newPassword []byte) error {
	if c.auth.Phase() != auth.Authenticated {
		return &model.StateError{Op: "change_password", Phase: c.auth.Phase().String()}
	}

	saved, err := c.vault.Load(oldPassword)
	if err != nil {
		c.setStatus("Password not changed: %v", err)
		return err
	}
	defer saved.WhenSome(func(b []byte) { clear(b) })

	if err := c.auth.ChangePassword(oldPassword, newPassword); err != nil {
		c.reportAuthError(err)
		return err
	}

	if saved.IsSome() {
		secret := saved.UnwrapOr(nil)
		err := c.vault.Save(secret, newPassword)
		metrics.VaultOperations.WithLabelValues("save", metrics.Result(err)).Inc()
		if err != nil {
			log.Errorf("Failed to re-encrypt saved key: %v", err)

			// Revert the hash so it still matches the blob.
			if rerr := c.auth.ChangePassword(newPassword, oldPassword); rerr != nil {
				log.Criticalf("Failed to restore old password: %v", rerr)
				c.setStatus("Password changed, but the saved wallet could not be re-encrypted: %v", err)
				return fmt.Errorf("%w: re-encryption failed (%v) and the old "+
					"password could not be restored: %w", model.ErrIO, err, rerr)
			}

			c.setStatus("Password not changed: %v", err)
			return err
		}
	}

	c.setStatus("Password changed")
	return nil
}

// ResetPassword deletes the password hash and the saved key, and forgets the
// wallet. Authentication returns to Unauthenticated.
func (c *Controller) ResetPassword() error {
	if c.auth.Phase() == auth.Unauthenticated {
		return &model.StateError{Op: "reset_password", Phase: c.auth.Phase().String()}
	}

	if err := c.vault.Delete(); err != nil {
		return err
	}
	if err := c.auth.ResetPassword(); err != nil {
		return err
	}

	c.resetWallet()
	c.setStatus("Password and saved wallet deleted")
	return nil
}

// ForgetSavedKey deletes the saved key. The wallet stays loaded in memory.
func (c *Controller) ForgetSavedKey() error {
	if c.auth.Phase() != auth.Authenticated {
		return &model.StateError{Op: "forget_saved_key", Phase: c.auth.Phase().String()}
	}

	if err := c.vault.Delete(); err != nil {
		return err
	}
	c.saved = false
	c.setStatus("Saved wallet deleted")
	return nil
}

func (c *Controller) reportAuthError(err error) {
	switch {
	case errors.Is(err, model.ErrLockedOut):
		c.setStatus("%v", err)
	case errors.Is(err, model.ErrCrypto):
		c.setStatus("Invalid password")
	case errors.Is(err, model.ErrValidation):
		c.setStatus("%v", err)
	case model.IsStateError(err):
		log.Errorf("Contract violation: %v", err)
	default:
		c.setStatus("Authentication failed: %v", err)
	}
}
