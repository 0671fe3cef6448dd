package crypto

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

const (
	// KeyFileName is the name of the encrypted private key file inside the
	// data directory.
	KeyFileName = "encrypted_private_key.dat"

	// PasswordFileName is the name of the password hash artifact, stored next
	// to the key file.
	PasswordFileName = "password.hash"
)

// Vault stores a single secret encrypted under a password-derived key.
type Vault struct {
	path   string
	params KDFParams

	// mu serializes writers of the blob file.
	mu sync.Mutex
}

// NewVault returns a vault backed by path. New blobs are written with params;
// existing blobs are read with the parameters recorded in them.
func NewVault(path string, params KDFParams) *Vault {
	return &Vault{
		path:   path,
		params: params,
	}
}

// KeyFilePath returns the default key file location inside dataDir.
func KeyFilePath(dataDir string) string {
	return filepath.Join(dataDir, KeyFileName)
}

// PasswordFilePath returns the default password hash location inside dataDir.
func PasswordFilePath(dataDir string) string {
	return filepath.Join(dataDir, PasswordFileName)
}

// Path returns the blob file location.
func (v *Vault) Path() string {
	return v.path
}

// Exists reports whether a saved blob is present.
func (v *Vault) Exists() bool {
	ok, err := common.FileExists(v.path)
	return err == nil && ok
}

// Delete removes the saved blob. Deleting a missing blob is not an error.
func (v *Vault) Delete() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete encrypted key: %w", model.ErrIO, err)
	}

	log.Infof("Deleted encrypted private key at %s", v.path)
	return nil
}
