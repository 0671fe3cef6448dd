package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
	"pgregory.net/rapid"
)

var testSeed = bytes.Repeat([]byte{0x11}, 32)

func expectedEd25519Address(seed []byte) string {
	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	sum := blake2b.Sum256(append([]byte{0x00}, pub...))
	return "0x" + hex.EncodeToString(sum[:])
}

func TestAllFormatsAgree(t *testing.T) {
	t.Parallel()

	want := expectedEd25519Address(testSeed)

	b32, err := bech32.EncodeFromBase256(Bech32HRP, append([]byte{0x00}, testSeed...))
	require.NoError(t, err)

	inputs := map[string]Format{
		b32: FormatBech32,
		base64.StdEncoding.EncodeToString(append([]byte{0x00}, testSeed...)): FormatBase64,
		base64.StdEncoding.EncodeToString(testSeed):                         FormatBase64,
		hex.EncodeToString(testSeed):                                        FormatHex,
		"0x" + hex.EncodeToString(testSeed):                                 FormatHex,
		"  " + b32 + "\n":                                                   FormatBech32,
	}

	for in, format := range inputs {
		key, err := ParseSecretKey(in)
		require.NoError(t, err, in)
		require.Equal(t, ED25519, key.Scheme())
		require.Equal(t, format, key.Format())
		require.Equal(t, want, key.Address())

		canonical, err := key.Bech32()
		require.NoError(t, err)
		require.Equal(t, b32, canonical)
	}
}

// Published ed25519 keys and addresses from the Sui TypeScript SDK tests.
func TestKnownSuiVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		secret  string
		address string
	}{
		{
			secret:  "suiprivkey1qrwsjvr6gwaxmsvxk4cfun99ra8uwxg3c9pl0nhle7xxpe4s80y05ctazer",
			address: "0xa2d14fad60c56049ecf75246a481934691214ce413e6a8ae2fe6834c173a6133",
		},
		{
			secret:  "suiprivkey1qzdvpa77ct272ultqcy20dkw78dysnfyg90fjlswgqt3dlz7yycxsdxwr5e",
			address: "0x1ada6e6f3f3e4055096f606c746690f1108fcc2ca479055cc434a3e1d3f758aa",
		},
	}

	for _, tc := range tests {
		key, err := ParseSecretKey(tc.secret)
		require.NoError(t, err, tc.secret)
		require.Equal(t, ED25519, key.Scheme())
		require.Equal(t, tc.address, key.Address())

		canonical, err := key.Bech32()
		require.NoError(t, err)
		require.Equal(t, tc.secret, canonical)
	}
}

func TestAddressShape(t *testing.T) {
	t.Parallel()

	key, err := ParseSecretKey(hex.EncodeToString(testSeed))
	require.NoError(t, err)

	addr := key.Address()
	require.True(t, strings.HasPrefix(addr, "0x"))
	require.Len(t, addr, 66)
	require.Equal(t, strings.ToLower(addr), addr)
}

func TestOtherSchemes(t *testing.T) {
	t.Parallel()

	for _, scheme := range []Scheme{Secp256k1, Secp256r1} {
		data := append([]byte{byte(scheme)}, testSeed...)
		key, err := ParseSecretKey(base64.StdEncoding.EncodeToString(data))
		require.NoError(t, err, scheme)
		require.Equal(t, scheme, key.Scheme())

		pub := key.PublicKey()
		require.Len(t, pub, 33)
		require.Contains(t, []byte{0x02, 0x03}, pub[0])

		sum := blake2b.Sum256(append([]byte{byte(scheme)}, pub...))
		require.Equal(t, "0x"+hex.EncodeToString(sum[:]), key.Address())

		// Bech32 round trip keeps the scheme flag.
		b32, err := key.Bech32()
		require.NoError(t, err)
		again, err := ParseSecretKey(b32)
		require.NoError(t, err)
		require.Equal(t, key.Address(), again.Address())
	}

	// The schemes derive different addresses from the same secret.
	k1, err := ParseSecretKey(base64.StdEncoding.EncodeToString(append([]byte{0x01}, testSeed...)))
	require.NoError(t, err)
	r1, err := ParseSecretKey(base64.StdEncoding.EncodeToString(append([]byte{0x02}, testSeed...)))
	require.NoError(t, err)
	require.NotEqual(t, k1.Address(), r1.Address())
}

func TestRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	zero := make([]byte, 32)
	badFlag, err := bech32.EncodeFromBase256(Bech32HRP, append([]byte{0x07}, testSeed...))
	require.NoError(t, err)
	wrongHRP, err := bech32.EncodeFromBase256("notsui", append([]byte{0x00}, testSeed...))
	require.NoError(t, err)
	short, err := bech32.EncodeFromBase256(Bech32HRP, testSeed[:20])
	require.NoError(t, err)

	cases := []string{
		"",
		"   ",
		"hello world",
		"suiprivkey1qqqqqqqq",
		badFlag,
		wrongHRP,
		short,
		base64.StdEncoding.EncodeToString(make([]byte, 31)),
		base64.StdEncoding.EncodeToString(make([]byte, 64)),
		hex.EncodeToString(testSeed)[:63],
		base64.StdEncoding.EncodeToString(append([]byte{0x01}, zero...)),
		base64.StdEncoding.EncodeToString(append([]byte{0x02}, zero...)),
	}

	for _, in := range cases {
		_, err := ParseSecretKey(in)
		require.ErrorIs(t, err, model.ErrValidation, "input %q", in)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := Generate()
	require.NoError(t, err)
	require.Equal(t, ED25519, key.Scheme())

	b32, err := key.Bech32()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(b32, Bech32HRP+"1"))

	parsed, err := ParseSecretKey(b32)
	require.NoError(t, err)
	require.Equal(t, key.Address(), parsed.Address())

	other, err := Generate()
	require.NoError(t, err)
	require.NotEqual(t, key.Address(), other.Address())
}

func TestBech32RoundTripProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "seed")

		key, err := ParseSecretKey(base64.StdEncoding.EncodeToString(seed))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got, want := key.Address(), expectedEd25519Address(seed); got != want {
			t.Fatalf("address %s, want %s", got, want)
		}

		b32, err := key.Bech32()
		if err != nil {
			t.Fatalf("bech32: %v", err)
		}
		again, err := ParseSecretKey(b32)
		if err != nil {
			t.Fatalf("reparse: %v", err)
		}
		if again.Address() != key.Address() {
			t.Fatalf("address changed across bech32 round trip")
		}
	})
}

func TestZeroAndString(t *testing.T) {
	t.Parallel()

	key, err := ParseSecretKey(hex.EncodeToString(testSeed))
	require.NoError(t, err)

	require.NotContains(t, key.String(), hex.EncodeToString(testSeed))
	require.Contains(t, key.String(), key.Address())

	key.Zero()
	require.Equal(t, make([]byte, 32), key.secret)
}

func TestTruncateAddress(t *testing.T) {
	t.Parallel()

	addr := "0x" + strings.Repeat("ab", 32)
	require.Equal(t, "0xabab...abab", TruncateAddress(addr, 6, 4))
	require.Equal(t, "0x12", TruncateAddress("0x12", 6, 4))
	require.Equal(t, addr, TruncateAddress(addr, -1, 4))
}
