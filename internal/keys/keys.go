// Package keys parses Sui secret keys and derives their addresses.
package keys

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/blake2b"
)

// Bech32HRP is the human readable part of an encoded Sui secret key.
const Bech32HRP = "suiprivkey"

const seedLen = 32

// Scheme is the signature scheme flag byte that prefixes keys and addresses.
type Scheme byte

const (
	ED25519   Scheme = 0x00
	Secp256k1 Scheme = 0x01
	Secp256r1 Scheme = 0x02
)

func (s Scheme) String() string {
	switch s {
	case ED25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	case Secp256r1:
		return "secp256r1"
	default:
		return fmt.Sprintf("scheme(0x%02x)", byte(s))
	}
}

// Format is the textual encoding a key was imported from.
type Format uint8

const (
	FormatBech32 Format = iota
	FormatBase64
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatBech32:
		return "bech32"
	case FormatBase64:
		return "base64"
	default:
		return "hex"
	}
}

// SecretKey is a parsed private key with its public key.
type SecretKey struct {
	scheme Scheme
	format Format
	secret []byte
	public []byte
}

// ParseSecretKey accepts a `suiprivkey1...` Bech32 string, Base64 of the
// flag byte plus the 32-byte secret (or the bare ed25519 secret), or 64 hex
// digits of an ed25519 secret. Anything else is a model.ErrValidation.
func ParseSecretKey(raw string) (*SecretKey, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: private key cannot be empty", model.ErrValidation)
	}

	switch {
	case strings.HasPrefix(strings.ToLower(s), Bech32HRP+"1"):
		return parseBech32(s)

	case isHexSeed(s):
		seed, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex private key", model.ErrValidation)
		}
		defer clear(seed)
		return newSecretKey(ED25519, FormatHex, seed)

	default:
		return parseBase64(s)
	}
}

func parseBech32(s string) (*SecretKey, error) {
	hrp, data, err := bech32.DecodeToBase256(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bech32 private key: %w", model.ErrValidation, err)
	}
	defer clear(data)

	if hrp != Bech32HRP {
		return nil, fmt.Errorf("%w: unexpected bech32 prefix %q", model.ErrValidation, hrp)
	}
	if len(data) != seedLen+1 {
		return nil, fmt.Errorf("%w: bech32 private key must hold %d bytes, got %d",
			model.ErrValidation, seedLen+1, len(data))
	}

	return newSecretKey(Scheme(data[0]), FormatBech32, data[1:])
}

func parseBase64(s string) (*SecretKey, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized private key format", model.ErrValidation)
	}
	defer clear(data)

	switch len(data) {
	case seedLen + 1:
		return newSecretKey(Scheme(data[0]), FormatBase64, data[1:])
	case seedLen:
		return newSecretKey(ED25519, FormatBase64, data)
	default:
		return nil, fmt.Errorf("%w: base64 private key must decode to %d or %d bytes, got %d",
			model.ErrValidation, seedLen, seedLen+1, len(data))
	}
}

func isHexSeed(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != seedLen*2 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// newSecretKey copies seed and derives the compressed public key.
func newSecretKey(scheme Scheme, format Format, seed []byte) (*SecretKey, error) {
	if len(seed) != seedLen {
		return nil, fmt.Errorf("%w: secret must be %d bytes", model.ErrValidation, seedLen)
	}

	var public []byte
	switch scheme {
	case ED25519:
		priv := ed25519.NewKeyFromSeed(seed)
		public = append([]byte(nil), priv.Public().(ed25519.PublicKey)...)
		clear(priv)

	case Secp256k1:
		var scalar secp256k1.ModNScalar
		if overflow := scalar.SetByteSlice(seed); overflow || scalar.IsZero() {
			return nil, fmt.Errorf("%w: invalid secp256k1 private key", model.ErrValidation)
		}
		priv := secp256k1.NewPrivateKey(&scalar)
		public = priv.PubKey().SerializeCompressed()
		priv.Zero()

	case Secp256r1:
		priv, err := ecdh.P256().NewPrivateKey(seed)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid secp256r1 private key", model.ErrValidation)
		}
		// 0x04 || X || Y
		point := priv.PublicKey().Bytes()
		public = make([]byte, 0, 33)
		public = append(public, 0x02|point[64]&1)
		public = append(public, point[1:33]...)

	default:
		return nil, fmt.Errorf("%w: unsupported key scheme flag 0x%02x", model.ErrValidation, byte(scheme))
	}

	return &SecretKey{
		scheme: scheme,
		format: format,
		secret: append([]byte(nil), seed...),
		public: public,
	}, nil
}

// Scheme returns the signature scheme.
func (k *SecretKey) Scheme() Scheme {
	return k.scheme
}

// Format returns the encoding the key was parsed from.
func (k *SecretKey) Format() Format {
	return k.format
}

// PublicKey returns a copy of the public key bytes.
func (k *SecretKey) PublicKey() []byte {
	return append([]byte(nil), k.public...)
}

// Address returns the Sui address: 0x + hex(blake2b-256(flag || pubkey)).
func (k *SecretKey) Address() string {
	buf := make([]byte, 0, 1+len(k.public))
	buf = append(buf, byte(k.scheme))
	buf = append(buf, k.public...)

	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// Bech32 returns the canonical `suiprivkey1...` encoding of the key.
func (k *SecretKey) Bech32() (string, error) {
	data := make([]byte, 0, seedLen+1)
	data = append(data, byte(k.scheme))
	data = append(data, k.secret...)
	defer clear(data)

	s, err := bech32.EncodeFromBase256(Bech32HRP, data)
	if err != nil {
		return "", fmt.Errorf("failed to encode private key: %w", err)
	}
	return s, nil
}

// Zero wipes the secret bytes. The key is unusable afterwards.
func (k *SecretKey) Zero() {
	clear(k.secret)
}

// String never reveals the secret.
func (k *SecretKey) String() string {
	return fmt.Sprintf("SecretKey(%v, %s)", k.scheme, k.Address())
}

// TruncateAddress shortens addr for display, keeping head and tail characters.
func TruncateAddress(addr string, head, tail int) string {
	if head < 0 || tail < 0 || len(addr) <= head+tail+3 {
		return addr
	}
	return addr[:head] + "..." + addr[len(addr)-tail:]
}
