package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

// Save encrypts plaintext under password and atomically replaces the blob file.
// Salt and nonce are fresh on every call.
// password must be []byte for security (caller should zero it after use)
func (v *Vault) Save(plaintext, password []byte) error {
	blob, err := Seal(plaintext, password, v.params)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := common.WriteFileAtomic(v.path, []byte(blob.Encode()), 0600); err != nil {
		return fmt.Errorf("%w: %w", model.ErrIO, err)
	}

	log.Debugf("Saved encrypted private key to %s", v.path)
	return nil
}

// Seal encrypts plaintext into a new EncryptedBlob.
func Seal(plaintext, password []byte, params KDFParams) (*EncryptedBlob, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCrypto, err)
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: failed to generate salt: %w", model.ErrCrypto, err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %w", model.ErrCrypto, err)
	}

	// Derive key from password
	key := deriveKey(password, salt, params)
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	blob := &EncryptedBlob{
		Params: params,
		Salt:   salt,
		Nonce:  nonce,
	}
	blob.CipherText = aesGCM.Seal(nil, nonce, plaintext, blob.header())

	return blob, nil
}

// newGCM creates an AES-256-GCM AEAD for key.
func newGCM(key []byte) (cipher.AEAD, error) {
	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cipher: %w", model.ErrCrypto, err)
	}

	// Create GCM
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %w", model.ErrCrypto, err)
	}

	return aesGCM, nil
}
