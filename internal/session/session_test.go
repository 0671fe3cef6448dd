package session

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestSetGetClear(t *testing.T) {
	t.Parallel()

	m := New(clock.NewTestClock(testTime), DefaultTimeout)

	_, ok := m.Password()
	require.False(t, ok)
	require.False(t, m.Active())

	input := []byte("Pw1")
	m.Set(input)

	// The caller zeroing its slice must not affect the stored copy.
	clear(input)

	pw, ok := m.Password()
	require.True(t, ok)
	require.Equal(t, []byte("Pw1"), pw)

	// Mutating the returned copy must not affect the stored copy either.
	clear(pw)
	pw, ok = m.Password()
	require.True(t, ok)
	require.Equal(t, []byte("Pw1"), pw)

	m.Clear()
	_, ok = m.Password()
	require.False(t, ok)
	require.False(t, m.Active())
	require.True(t, m.ExpiresAt().IsZero())
}

func TestSetReplacesAndZeroesPrevious(t *testing.T) {
	t.Parallel()

	m := New(clock.NewTestClock(testTime), 0)
	m.Set([]byte("first"))

	old := m.password
	m.Set([]byte("second"))

	require.Equal(t, make([]byte, len("first")), old)

	pw, ok := m.Password()
	require.True(t, ok)
	require.Equal(t, []byte("second"), pw)
}

func TestClearZeroesBackingArray(t *testing.T) {
	t.Parallel()

	m := New(clock.NewTestClock(testTime), 0)
	m.Set([]byte("secret"))

	backing := m.password
	m.Clear()

	require.Equal(t, make([]byte, len("secret")), backing)
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock(testTime)
	m := New(clk, time.Minute)
	m.Set([]byte("pw"))
	require.Equal(t, testTime.Add(time.Minute), m.ExpiresAt())

	clk.SetTime(testTime.Add(30 * time.Second))
	require.False(t, m.Expired())
	m.Touch()

	// Touch pushed expiry out to 1m30s.
	clk.SetTime(testTime.Add(80 * time.Second))
	require.False(t, m.Expired())
	_, ok := m.Password()
	require.True(t, ok)

	clk.SetTime(testTime.Add(2 * time.Minute))
	require.True(t, m.Expired())
	_, ok = m.Password()
	require.False(t, ok)

	// Still held until cleared, so the owner can tell expiry from logout.
	require.True(t, m.Active())
	m.Clear()
	require.False(t, m.Expired())
}

func TestNoTimeoutNeverExpires(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock(testTime)
	m := New(clk, 0)
	m.Set([]byte("pw"))

	clk.SetTime(testTime.Add(24 * 365 * time.Hour))
	require.False(t, m.Expired())
	_, ok := m.Password()
	require.True(t, ok)
}
