// Package session holds the password of the current authenticated session in
// memory only. Nothing in this package ever writes to disk.
package session

import (
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// DefaultTimeout is the idle time after which a session expires.
const DefaultTimeout = 30 * time.Minute

// Manager owns the session password. Callers receive copies and must zero
// them after use.
type Manager struct {
	clock   clock.Clock
	timeout time.Duration

	mu        sync.Mutex
	password  []byte
	expiresAt time.Time
}

// New creates an empty Manager. A zero timeout disables expiry.
func New(clk clock.Clock, timeout time.Duration) *Manager {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Manager{
		clock:   clk,
		timeout: timeout,
	}
}

// Set stores password for the rest of the session, zeroing any previous value.
// The manager keeps its own copy; the caller may clear its slice afterwards.
func (m *Manager) Set(password []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.password)
	m.password = make([]byte, len(password))
	copy(m.password, password)
	m.touchLocked()
}

// Password returns a copy of the session password, or false if none is set
// or the session expired.
// Caller must zero the returned slice after use for security.
func (m *Manager) Password() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.password == nil || m.expiredLocked() {
		return nil, false
	}

	out := make([]byte, len(m.password))
	copy(out, m.password)
	return out, true
}

// Clear zeroes and drops the password.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.password)
	m.password = nil
	m.expiresAt = time.Time{}
}

// Active reports whether a password is held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.password != nil
}

// Expired reports whether a held password outlived the session timeout.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.password != nil && m.expiredLocked()
}

// Touch extends the session by the full timeout.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.password != nil {
		m.touchLocked()
	}
}

// ExpiresAt returns the current expiry, zero when expiry is disabled or no
// session is active.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.expiresAt
}

func (m *Manager) touchLocked() {
	if m.timeout > 0 {
		m.expiresAt = m.clock.Now().Add(m.timeout)
	}
}

func (m *Manager) expiredLocked() bool {
	return !m.expiresAt.IsZero() && m.clock.Now().After(m.expiresAt)
}
