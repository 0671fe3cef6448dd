package keys

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Generate creates a new random ed25519 key.
func Generate() (*SecretKey, error) {
	// Solana and Sui share the ed25519 layout: seed || public key.
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	defer clear(priv)

	return newSecretKey(ED25519, FormatBech32, priv[:seedLen])
}
