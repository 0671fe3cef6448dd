package crypto

import (
	"fmt"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"golang.org/x/crypto/argon2"
)

const (
	keyLen   = 32 // AES-256
	saltLen  = 32
	nonceLen = 12

	// Upper bounds accepted when parameters are read back from disk. A
	// tampered header must not make us allocate gigabytes or spin forever.
	maxKDFTime      = 16
	maxKDFMemoryKiB = 1 << 21 // 2 GiB
	maxKDFThreads   = 64
)

// KDFParams are the argon2id cost parameters.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDFParams matches argon2's recommended defaults for interactive
// logins: t=2, m=19 MiB, p=1.
var DefaultKDFParams = KDFParams{
	Time:      2,
	MemoryKiB: 19456,
	Threads:   1,
}

// Validate checks the parameters are within the accepted range.
func (p KDFParams) Validate() error {
	switch {
	case p.Time == 0 || p.Time > maxKDFTime:
		return fmt.Errorf("%w: kdf time %d out of range", model.ErrFormat, p.Time)
	case p.Threads == 0 || p.Threads > maxKDFThreads:
		return fmt.Errorf("%w: kdf threads %d out of range", model.ErrFormat, p.Threads)
	case p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxKDFMemoryKiB:
		return fmt.Errorf("%w: kdf memory %d KiB out of range", model.ErrFormat, p.MemoryKiB)
	}
	return nil
}

// deriveKey derives a 32-byte AES key from password and salt.
// Caller should zero the returned key after use.
func deriveKey(password, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, keyLen)
}
