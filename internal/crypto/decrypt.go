package crypto

import (
	"fmt"
	"os"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Load reads and decrypts the blob file.
// It returns None when no blob has been saved yet.
// password must be []byte for security (caller should zero it after use);
// the returned plaintext should be zeroed by the caller as well.
func (v *Vault) Load(password []byte) (fn.Option[[]byte], error) {
	none := fn.None[[]byte]()

	fileData, err := os.ReadFile(v.path)
	switch {
	case os.IsNotExist(err):
		return none, nil
	case err != nil:
		return none, fmt.Errorf("%w: failed to read file: %w", model.ErrIO, err)
	case len(fileData) == 0:
		return none, fmt.Errorf("%w: file is empty", model.ErrFormat)
	}

	blob, err := DecodeBlob(string(fileData))
	if err != nil {
		return none, err
	}

	plaintext, err := Open(blob, password)
	if err != nil {
		return none, err
	}

	return fn.Some(plaintext), nil
}

// Open decrypts blob with password. A wrong password and a modified blob both
// yield model.ErrCrypto.
func Open(blob *EncryptedBlob, password []byte) ([]byte, error) {
	if err := blob.Params.Validate(); err != nil {
		return nil, err
	}
	if len(blob.Salt) != saltLen || len(blob.Nonce) != nonceLen {
		return nil, fmt.Errorf("%w: bad salt or nonce length", model.ErrFormat)
	}

	// Derive key from password
	key := deriveKey(password, blob.Salt, blob.Params)
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Decrypt
	plaintext, err := aesGCM.Open(nil, blob.Nonce, blob.CipherText, blob.header())
	if err != nil {
		return nil, model.ErrCrypto
	}

	return plaintext, nil
}
