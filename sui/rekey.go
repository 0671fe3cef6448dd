package sui

import (
	"fmt"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

// Rekey replaces the password and re-encrypts the saved key under the new
// one with the store's current KDF parameters. Passing the same password
// twice only upgrades the parameters. It reports whether a key was
// re-encrypted.
func (s Store) Rekey(oldPassword, newPassword []byte) (bool, error) {
	a, err := s.login(oldPassword)
	if err != nil {
		return false, err
	}

	vault := s.vault()
	saved, err := vault.Load(oldPassword)
	if err != nil {
		return false, err
	}
	defer saved.WhenSome(func(b []byte) { clear(b) })

	if err := a.ChangePassword(oldPassword, newPassword); err != nil {
		return false, err
	}

	if saved.IsNone() {
		return false, nil
	}
	if err := vault.Save(saved.UnwrapOr(nil), newPassword); err != nil {
		// Revert the hash so it still matches the blob.
		if rerr := a.ChangePassword(newPassword, oldPassword); rerr != nil {
			return false, fmt.Errorf("%w: re-encryption failed (%v) and the old "+
				"password could not be restored: %w", model.ErrIO, err, rerr)
		}
		return false, err
	}
	return true, nil
}
