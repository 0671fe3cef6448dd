package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testParams keep argon2 cheap so the tests stay fast.
var testParams = KDFParams{Time: 1, MemoryKiB: 64, Threads: 1}

func newTestVault(t testing.TB) *Vault {
	return NewVault(filepath.Join(t.TempDir(), KeyFileName), testParams)
}

func readBlob(t *testing.T, v *Vault) *EncryptedBlob {
	data, err := os.ReadFile(v.Path())
	require.NoError(t, err)

	blob, err := DecodeBlob(string(data))
	require.NoError(t, err)

	return blob
}

func TestVaultRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(rt, "plaintext")
		password := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "password")

		dir, err := os.MkdirTemp("", "vault")
		if err != nil {
			rt.Fatalf("temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		v := NewVault(filepath.Join(dir, KeyFileName), testParams)
		if err := v.Save(plaintext, password); err != nil {
			rt.Fatalf("save: %v", err)
		}

		got, err := v.Load(password)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		if !bytes.Equal(got.UnwrapOr(nil), plaintext) || got.IsNone() {
			rt.Fatalf("round trip mismatch")
		}
	})
}

func TestVaultWrongPassword(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	secret := []byte("suiprivkey1qqsecret")
	require.NoError(t, v.Save(secret, []byte("Pw1")))

	for _, wrong := range []string{"", "pw1", "Pw1 ", "Pw2", "Pw1Pw1"} {
		got, err := v.Load([]byte(wrong))
		require.ErrorIs(t, err, model.ErrCrypto, wrong)
		require.True(t, got.IsNone())
	}
}

func TestVaultFirstRun(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	require.False(t, v.Exists())

	got, err := v.Load([]byte("anything"))
	require.NoError(t, err)
	require.True(t, got.IsNone())

	// Deleting a missing blob is fine too.
	require.NoError(t, v.Delete())
}

func TestVaultFreshSaltAndNonce(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	secret := []byte("same secret")
	password := []byte("same password")

	require.NoError(t, v.Save(secret, password))
	first := readBlob(t, v)

	require.NoError(t, v.Save(secret, password))
	second := readBlob(t, v)

	require.NotEqual(t, first.Salt, second.Salt)
	require.NotEqual(t, first.Nonce, second.Nonce)
	require.NotEqual(t, first.CipherText, second.CipherText)

	// The file is replaced, not appended to.
	got, err := v.Load(password)
	require.NoError(t, err)
	require.Equal(t, secret, got.UnwrapOrFail(t))
}

func TestVaultBlobDoesNotContainSecret(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	secret := []byte("suiprivkey1qzdlfxn2qa2lj5uprl8pyhexs02sg2wrhdy7qaq50cqgnffw4c2477kg9h3")
	require.NoError(t, v.Save(secret, []byte("pw")))

	data, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	require.NotContains(t, string(data), string(secret))

	raw, err := base64.StdEncoding.DecodeString(string(data))
	require.NoError(t, err)
	require.False(t, bytes.Contains(raw, secret))

	info, err := os.Stat(v.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// TestVaultCorruptBlob flips every byte of the stored blob in turn and
// truncates it at several lengths. Every variant must fail with a format or
// crypto error and never decrypt.
func TestVaultCorruptBlob(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	secret := []byte("secret key material")
	password := []byte("Pw1")
	require.NoError(t, v.Save(secret, password))

	data, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(string(data))
	require.NoError(t, err)

	requireRejected := func(text string) {
		t.Helper()

		require.NoError(t, os.WriteFile(v.Path(), []byte(text), 0600))
		got, err := v.Load(password)
		require.Error(t, err)
		require.True(t,
			errorsIsAny(err, model.ErrFormat, model.ErrCrypto),
			"unexpected error class: %v", err,
		)
		require.True(t, got.IsNone())
	}

	for i := range raw {
		mutated := bytes.Clone(raw)
		mutated[i] ^= 0x01
		requireRejected(base64.StdEncoding.EncodeToString(mutated))
	}

	for _, n := range []int{0, 1, 4, 10, 40, len(data) / 2, len(data) - 4, len(data) - 1} {
		if n == 0 {
			// An empty file is a format error as well.
			require.NoError(t, os.WriteFile(v.Path(), nil, 0600))
			_, err := v.Load(password)
			require.ErrorIs(t, err, model.ErrFormat)
			continue
		}
		requireRejected(string(data[:n]))
	}

	requireRejected("not base64 at all!")
	requireRejected(string(data) + "AAAA")
}

func TestVaultConcurrentSaves(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	password := []byte("pw")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- v.Save([]byte{byte(i)}, password)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Whichever save won, the file is a complete blob.
	got, err := v.Load(password)
	require.NoError(t, err)
	require.Len(t, got.UnwrapOrFail(t), 1)
}

func TestVaultDelete(t *testing.T) {
	t.Parallel()

	v := newTestVault(t)
	require.NoError(t, v.Save([]byte("k"), []byte("p")))
	require.True(t, v.Exists())

	require.NoError(t, v.Delete())
	require.False(t, v.Exists())
}

func TestDecodeBlobRejectsHostileParams(t *testing.T) {
	t.Parallel()

	blob, err := Seal([]byte("k"), []byte("p"), testParams)
	require.NoError(t, err)

	blob.Params.MemoryKiB = maxKDFMemoryKiB + 1
	_, err = DecodeBlob(blob.Encode())
	require.ErrorIs(t, err, model.ErrFormat)

	blob.Params = KDFParams{Time: 0, MemoryKiB: 64, Threads: 1}
	_, err = DecodeBlob(blob.Encode())
	require.ErrorIs(t, err, model.ErrFormat)
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()

	encoded, err := HashPassword([]byte("Pw1"), testParams)
	require.NoError(t, err)
	require.Regexp(t, `^\$argon2id\$v=19\$m=64,t=1,p=1\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`, encoded)

	ok, err := VerifyPassword([]byte("Pw1"), encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword([]byte("Pw2"), encoded)
	require.NoError(t, err)
	require.False(t, ok)

	// Trailing newline from a hand-edited file is tolerated.
	ok, err = VerifyPassword([]byte("Pw1"), encoded+"\n")
	require.NoError(t, err)
	require.True(t, ok)

	// Same password, different salt.
	again, err := HashPassword([]byte("Pw1"), testParams)
	require.NoError(t, err)
	require.NotEqual(t, encoded, again)
}

func TestPasswordHashMalformed(t *testing.T) {
	t.Parallel()

	for _, encoded := range []string{
		"",
		"plaintext-password",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=16$m=64,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=99999999,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdHNhbHQ$c2hvcnQ",
	} {
		_, err := VerifyPassword([]byte("pw"), encoded)
		require.ErrorIs(t, err, model.ErrFormat, encoded)
	}
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
