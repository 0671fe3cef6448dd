package sui

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/keys"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/stretchr/testify/require"
)

const testKey = "0x2222222222222222222222222222222222222222222222222222222222222222"

var testParams = crypto.KDFParams{Time: 1, MemoryKiB: 64, Threads: 1}

// newStore configures password and, when withKey is set, saves testKey.
func newStore(t *testing.T, password string, withKey bool) Store {
	t.Helper()

	s := Store{DataDir: t.TempDir(), Params: testParams}

	a, err := auth.New(auth.Config{
		PasswordFile: crypto.PasswordFilePath(s.DataDir),
		Params:       testParams,
	})
	require.NoError(t, err)
	require.NoError(t, a.SetPassword([]byte(password)))

	if withKey {
		key, err := keys.ParseSecretKey(testKey)
		require.NoError(t, err)
		encoded, err := key.Bech32()
		require.NoError(t, err)
		require.NoError(t, s.vault().Save([]byte(encoded), []byte(password)))
	}
	return s
}

func testAddress(t *testing.T) string {
	key, err := keys.ParseSecretKey(testKey)
	require.NoError(t, err)
	return key.Address()
}

func TestUnlock(t *testing.T) {
	t.Parallel()

	s := newStore(t, "pw", true)

	key, err := s.Unlock([]byte("pw"))
	require.NoError(t, err)
	defer key.Zero()
	require.Equal(t, testAddress(t), key.Address())

	_, err = s.Unlock([]byte("wrong"))
	require.ErrorIs(t, err, model.ErrCrypto)
}

func TestUnlockWithoutSavedKey(t *testing.T) {
	t.Parallel()

	s := newStore(t, "pw", false)
	_, err := s.Unlock([]byte("pw"))
	require.True(t, model.IsStateError(err))
}

func TestUnlockFirstRun(t *testing.T) {
	t.Parallel()

	s := Store{DataDir: t.TempDir(), Params: testParams}
	_, err := s.Unlock([]byte("pw"))
	require.ErrorIs(t, err, model.ErrState)
}

func TestRekey(t *testing.T) {
	t.Parallel()

	s := newStore(t, "old", true)

	// Stronger parameters for the new blob.
	s.Params = crypto.KDFParams{Time: 2, MemoryKiB: 128, Threads: 1}

	rekeyed, err := s.Rekey([]byte("old"), []byte("new"))
	require.NoError(t, err)
	require.True(t, rekeyed)

	_, err = s.Unlock([]byte("old"))
	require.ErrorIs(t, err, model.ErrCrypto)

	key, err := s.Unlock([]byte("new"))
	require.NoError(t, err)
	require.Equal(t, testAddress(t), key.Address())
}

func TestRekeyWithoutSavedKey(t *testing.T) {
	t.Parallel()

	s := newStore(t, "old", false)

	rekeyed, err := s.Rekey([]byte("old"), []byte("new"))
	require.NoError(t, err)
	require.False(t, rekeyed)

	_, err = s.login([]byte("new"))
	require.NoError(t, err)
}

func TestRekeyWrongPassword(t *testing.T) {
	t.Parallel()

	s := newStore(t, "old", true)

	_, err := s.Rekey([]byte("nope"), []byte("new"))
	require.ErrorIs(t, err, model.ErrCrypto)

	_, err = s.Unlock([]byte("old"))
	require.NoError(t, err)
}

func TestRekeyPolicy(t *testing.T) {
	t.Parallel()

	s := newStore(t, "old", true)
	s.Policy = auth.PolicyStrict

	_, err := s.Rekey([]byte("old"), []byte("weak"))
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = s.Unlock([]byte("old"))
	require.NoError(t, err)
}

type fixedClient struct {
	mist uint64
	err  error
}

func (c fixedClient) GetBalance(context.Context, string, model.Network) (uint64, error) {
	return c.mist, c.err
}

type fixedPrice struct {
	rate string
	err  error
}

func (p fixedPrice) GetSUIRate(context.Context, string) (string, error) {
	return p.rate, p.err
}

func TestGetBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	resp, err := GetBalance(ctx, fixedClient{mist: 1_500_000_000},
		fixedPrice{rate: "2"}, "0xabc", model.Testnet, "eur")
	require.NoError(t, err)
	require.Equal(t, "1500000000", resp.MIST)
	require.Equal(t, "1.500000000", resp.SUI)
	require.Equal(t, "3.00", resp.Fiat)
	require.Equal(t, "eur", resp.Currency)
	require.Equal(t, model.Testnet, resp.Network)

	// A price failure keeps the balance.
	resp, err = GetBalance(ctx, fixedClient{mist: 7},
		fixedPrice{err: errors.New("down")}, "0xabc", model.Devnet, "usd")
	require.NoError(t, err)
	require.Equal(t, "7", resp.MIST)
	require.Empty(t, resp.Fiat)
	require.Contains(t, resp.Error, "down")

	resp, err = GetBalance(ctx, fixedClient{mist: 7}, nil, "0xabc", model.Devnet, "usd")
	require.NoError(t, err)
	require.Empty(t, resp.Rate)

	_, err = GetBalance(ctx, fixedClient{err: model.ErrNetwork}, nil,
		"0xabc", model.Devnet, "")
	require.ErrorIs(t, err, model.ErrNetwork)
}

func TestAddressQR(t *testing.T) {
	t.Parallel()

	qr, err := AddressQR(testAddress(t))
	require.NoError(t, err)
	require.NotEmpty(t, qr)
}
