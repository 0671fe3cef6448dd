package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"golang.org/x/crypto/argon2"
)

const (
	hashSaltLen = 16
	hashLen     = 32
)

// HashPassword returns a PHC-format argon2id string for password:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
//
// The salt and hash are unpadded standard base64.
func HashPassword(password []byte, params KDFParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	salt := make([]byte, hashSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("%w: failed to generate salt: %w", model.ErrCrypto, err)
	}

	sum := argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Threads, hashLen)
	defer clear(sum)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.MemoryKiB, params.Time, params.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(sum)), nil
}

// VerifyPassword checks password against a string produced by HashPassword.
// A mismatch returns false with a nil error; an unparseable string returns
// model.ErrFormat.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	params, salt, want, err := parsePHC(strings.TrimSpace(encoded))
	if err != nil {
		return false, err
	}

	got := argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Threads, uint32(len(want)))
	defer clear(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func parsePHC(encoded string) (KDFParams, []byte, []byte, error) {
	var params KDFParams

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return params, nil, nil, fmt.Errorf("%w: invalid password hash format", model.ErrFormat)
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", model.ErrFormat, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported argon2 version", model.ErrFormat)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Time, &threads); err != nil {
		return params, nil, nil, fmt.Errorf("%w: invalid argon2 parameters: %w", model.ErrFormat, err)
	}
	if threads > maxKDFThreads {
		return params, nil, nil, fmt.Errorf("%w: kdf threads %d out of range", model.ErrFormat, threads)
	}
	params.Threads = uint8(threads)
	if err := params.Validate(); err != nil {
		return params, nil, nil, err
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return params, nil, nil, fmt.Errorf("%w: invalid salt", model.ErrFormat)
	}
	sum, err := b64.DecodeString(parts[5])
	if err != nil || len(sum) < 16 || len(sum) > 64 {
		return params, nil, nil, fmt.Errorf("%w: invalid hash", model.ErrFormat)
	}

	return params, salt, sum, nil
}
