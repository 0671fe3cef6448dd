// Package auth implements the authentication lifecycle that gates when the
// private key may be encrypted or decrypted.
//
//	Unauthenticated --SetPassword--> Authenticated
//	PasswordConfigured --VerifyPassword--> Authenticated
//	Authenticated --Logout--> PasswordConfigured
//
// Unauthenticated is the initial phase only when no password hash has ever
// been persisted.
package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/metrics"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/session"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Phase is the authentication lifecycle state.
type Phase uint8

const (
	Unauthenticated Phase = iota
	PasswordConfigured
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Unauthenticated:
		return "unauthenticated"
	case PasswordConfigured:
		return "password_configured"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Config holds the dependencies of a Context.
type Config struct {
	// PasswordFile is where the password hash artifact lives.
	PasswordFile string

	// Params are the argon2id parameters for new password hashes.
	Params crypto.KDFParams

	// Policy is the minimum strength for new passwords.
	Policy Policy

	// Session receives the password on successful authentication.
	Session *session.Manager

	Clock clock.Clock

	// MaxFailedAttempts consecutive failures suspend verification for
	// LockoutDuration. Zero disables lockout.
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// Context is the single authentication context of the process. It is not
// safe for concurrent use; the control loop owns it.
type Context struct {
	cfg     Config
	session *session.Manager
	clock   clock.Clock

	phase        Phase
	passwordHash fn.Option[string]

	failedAttempts int
	lockedUntil    time.Time
}

// New loads the persisted password hash, if any, and returns a Context in
// PasswordConfigured, or Unauthenticated on first run.
func New(cfg Config) (*Context, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.Session == nil {
		cfg.Session = session.New(cfg.Clock, session.DefaultTimeout)
	}

	a := &Context{
		cfg:          cfg,
		session:      cfg.Session,
		clock:        cfg.Clock,
		phase:        Unauthenticated,
		passwordHash: fn.None[string](),
	}

	hash, err := a.readHash()
	if err != nil {
		return nil, err
	}
	hash.WhenSome(func(string) {
		a.phase = PasswordConfigured
	})
	a.passwordHash = hash

	log.Infof("Authentication context ready, phase=%v", a.phase)
	return a, nil
}

// Phase returns the current phase.
func (a *Context) Phase() Phase {
	return a.phase
}

// IsAuthenticated reports whether the session is authenticated and unexpired.
func (a *Context) IsAuthenticated() bool {
	return a.phase == Authenticated && !a.session.Expired()
}

// Expired reports whether an authenticated session outlived its timeout.
// The owner is expected to log out when this returns true.
func (a *Context) Expired() bool {
	return a.phase == Authenticated && a.session.Expired()
}

// Touch records user activity, extending the session.
func (a *Context) Touch() {
	if a.phase == Authenticated {
		a.session.Touch()
	}
}

// LockedUntil returns the end of the current lockout, zero if none.
func (a *Context) LockedUntil() time.Time {
	if a.clock.Now().Before(a.lockedUntil) {
		return a.lockedUntil
	}
	return time.Time{}
}

// SetPassword configures the first password. Setting it also authenticates
// the session that set it.
func (a *Context) SetPassword(password []byte) error {
	if a.phase != Unauthenticated {
		return a.stateError("set_password")
	}
	if err := a.cfg.Policy.Check(password); err != nil {
		return err
	}

	if err := a.writeHash(password); err != nil {
		return err
	}

	a.phase = Authenticated
	a.session.Set(password)
	a.failedAttempts = 0

	log.Infof("Password configured, session authenticated")
	return nil
}

// VerifyPassword checks a login attempt. On success the session becomes
// Authenticated and holds the password. On mismatch the phase is unchanged
// and model.ErrCrypto is returned.
func (a *Context) VerifyPassword(password []byte) error {
	if a.phase != PasswordConfigured {
		return a.stateError("verify_password")
	}

	if until := a.LockedUntil(); !until.IsZero() {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return fmt.Errorf("%w (until %s)", model.ErrLockedOut,
			until.Format(time.RFC3339))
	}

	ok, err := a.check(password)
	if err != nil {
		return err
	}
	if !ok {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		a.recordFailure()
		return model.ErrCrypto
	}

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	a.failedAttempts = 0
	a.phase = Authenticated
	a.session.Set(password)

	log.Infof("Session authenticated")
	return nil
}

// Logout ends the session. The session password is cleared first, then reset
// runs (the owner's in-memory wallet state), then the phase returns to
// PasswordConfigured. Persisted artifacts are never touched.
func (a *Context) Logout(reset func()) error {
	if a.phase != Authenticated {
		return a.stateError("logout")
	}

	a.session.Clear()
	defer func() {
		a.phase = PasswordConfigured
		log.Infof("Logged out")
	}()

	if reset != nil {
		reset()
	}
	return nil
}

// SessionPassword returns a copy of the session password. It fails with a
// StateError unless the session is authenticated and unexpired.
// Caller must zero the returned slice after use for security.
func (a *Context) SessionPassword() ([]byte, error) {
	if a.phase != Authenticated {
		return nil, a.stateError("session_password")
	}
	pw, ok := a.session.Password()
	if !ok {
		return nil, &model.StateError{Op: "session_password", Phase: "expired"}
	}
	return pw, nil
}

// ChangePassword replaces the password of an authenticated session. A wrong
// old password counts toward the lockout like a failed login.
func (a *Context) ChangePassword(oldPassword, newPassword []byte) error {
	if a.phase != Authenticated {
		return a.stateError("change_password")
	}

	if until := a.LockedUntil(); !until.IsZero() {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return fmt.Errorf("%w (until %s)", model.ErrLockedOut,
			until.Format(time.RFC3339))
	}

	ok, err := a.check(oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		a.recordFailure()
		return model.ErrCrypto
	}
	a.failedAttempts = 0

	if err := a.cfg.Policy.Check(newPassword); err != nil {
		return err
	}

	if err := a.writeHash(newPassword); err != nil {
		return err
	}
	a.session.Set(newPassword)

	log.Infof("Password changed")
	return nil
}

// ResetPassword forgets the password: the hash file is deleted, the session
// cleared and the phase returns to Unauthenticated.
func (a *Context) ResetPassword() error {
	if a.phase == Unauthenticated {
		return a.stateError("reset_password")
	}

	a.session.Clear()
	if err := os.Remove(a.cfg.PasswordFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to remove password file: %w", model.ErrIO, err)
	}

	a.passwordHash = fn.None[string]()
	a.phase = Unauthenticated
	a.failedAttempts = 0
	a.lockedUntil = time.Time{}

	log.Infof("Password reset")
	return nil
}

func (a *Context) check(password []byte) (bool, error) {
	if a.passwordHash.IsNone() {
		// The file may have been written by another instance.
		hash, err := a.readHash()
		if err != nil {
			return false, err
		}
		a.passwordHash = hash
	}

	stored, err := a.passwordHash.UnwrapOrErr(model.ErrCrypto)
	if err != nil {
		return false, err
	}
	return crypto.VerifyPassword(password, stored)
}

func (a *Context) recordFailure() {
	if a.cfg.MaxFailedAttempts <= 0 {
		return
	}

	a.failedAttempts++
	if a.failedAttempts >= a.cfg.MaxFailedAttempts {
		a.lockedUntil = a.clock.Now().Add(a.cfg.LockoutDuration)
		a.failedAttempts = 0
		log.Warnf("Too many failed login attempts, locked until %v",
			a.lockedUntil.Format(time.RFC3339))
	}
}

func (a *Context) readHash() (fn.Option[string], error) {
	data, err := os.ReadFile(a.cfg.PasswordFile)
	switch {
	case os.IsNotExist(err):
		return fn.None[string](), nil
	case err != nil:
		return fn.None[string](), fmt.Errorf("%w: failed to read password file: %w", model.ErrIO, err)
	}

	hash := strings.TrimSpace(string(data))
	if hash == "" {
		return fn.None[string](), nil
	}
	return fn.Some(hash), nil
}

func (a *Context) writeHash(password []byte) error {
	encoded, err := crypto.HashPassword(password, a.cfg.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := common.WriteFileAtomic(a.cfg.PasswordFile, []byte(encoded), 0600); err != nil {
		return fmt.Errorf("%w: %w", model.ErrIO, err)
	}

	a.passwordHash = fn.Some(encoded)
	return nil
}

func (a *Context) stateError(op string) error {
	err := &model.StateError{Op: op, Phase: a.phase.String()}
	log.Errorf("Contract violation: %v", err)
	return err
}
