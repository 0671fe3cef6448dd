package sui

import (
	"fmt"

	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/keys"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

// Store is the saved wallet inside a data directory, used by one-shot
// commands that run without the HTTP server.
type Store struct {
	DataDir string
	Params  crypto.KDFParams
	Policy  auth.Policy
}

func (s Store) vault() *crypto.Vault {
	return crypto.NewVault(crypto.KeyFilePath(s.DataDir), s.Params)
}

// login verifies password against the stored hash.
func (s Store) login(password []byte) (*auth.Context, error) {
	a, err := auth.New(auth.Config{
		PasswordFile: crypto.PasswordFilePath(s.DataDir),
		Params:       s.Params,
		Policy:       s.Policy,
	})
	if err != nil {
		return nil, err
	}
	if a.Phase() != auth.PasswordConfigured {
		return nil, &model.StateError{Op: "login", Phase: a.Phase().String()}
	}

	if err := a.VerifyPassword(password); err != nil {
		return nil, err
	}
	return a, nil
}

// Unlock verifies password and decrypts the saved key.
// password must be []byte for security (caller should zero it after use).
// The caller should Zero the returned key.
func (s Store) Unlock(password []byte) (*keys.SecretKey, error) {
	if _, err := s.login(password); err != nil {
		return nil, err
	}

	plaintext, err := s.vault().Load(password)
	if err != nil {
		return nil, err
	}
	if plaintext.IsNone() {
		return nil, &model.StateError{Op: "unlock", Phase: "no_saved_key"}
	}
	secret := plaintext.UnwrapOr(nil)
	defer clear(secret)

	key, err := keys.ParseSecretKey(string(secret))
	if err != nil {
		return nil, fmt.Errorf("%w: saved key is invalid: %w", model.ErrFormat, err)
	}
	return key, nil
}
