package model

import (
	"fmt"
	"strings"
)

// Network identifies the Sui network a wallet is queried on.
type Network uint8

const (
	Devnet Network = iota
	Testnet
	Mainnet
)

// AllNetworks lists every supported network in display order.
var AllNetworks = []Network{Devnet, Testnet, Mainnet}

// String returns the display name of the network.
func (n Network) String() string {
	switch n {
	case Devnet:
		return "Devnet"
	case Testnet:
		return "Testnet"
	case Mainnet:
		return "Mainnet"
	default:
		return fmt.Sprintf("Network(%d)", uint8(n))
	}
}

// DefaultRPCURL returns the public fullnode endpoint for the network.
// Configuration may override it.
func (n Network) DefaultRPCURL() string {
	switch n {
	case Testnet:
		return "https://fullnode.testnet.sui.io:443"
	case Mainnet:
		return "https://fullnode.mainnet.sui.io:443"
	default:
		return "https://fullnode.devnet.sui.io:443"
	}
}

// AddressExplorerURL returns a block explorer link for address.
func (n Network) AddressExplorerURL(address string) string {
	if n == Mainnet {
		return "https://suiscan.xyz/mainnet/account/" + address
	}
	return fmt.Sprintf("https://suiscan.xyz/%s/account/%s",
		strings.ToLower(n.String()), address)
}

// IsMainnet reports whether real funds live on the network.
func (n Network) IsMainnet() bool {
	return n == Mainnet
}

// MarshalText encodes the network as its lower-case name.
func (n Network) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(n.String())), nil
}

// UnmarshalText accepts anything ParseNetwork accepts.
func (n *Network) UnmarshalText(text []byte) error {
	parsed, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNetwork parses a network name. Short forms ("dev", "test", "main")
// are accepted.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "devnet", "dev":
		return Devnet, nil
	case "testnet", "test":
		return Testnet, nil
	case "mainnet", "main":
		return Mainnet, nil
	default:
		return Devnet, fmt.Errorf("%w: unknown network %q", ErrValidation, s)
	}
}
