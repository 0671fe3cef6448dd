package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// SUICoinType is the Move type of the native coin.
const SUICoinType = "0x2::sui::SUI"

// SuiClient is a client for the Sui fullnode JSON-RPC API
type SuiClient struct {
	urls map[model.Network]string

	mu      sync.Mutex
	clients map[model.Network]jsonrpc.RPCClient
}

// NewSuiClient creates a client. Networks missing from urls use their
// public fullnode.
func NewSuiClient(urls map[model.Network]string) *SuiClient {
	resolved := make(map[model.Network]string, len(model.AllNetworks))
	for _, n := range model.AllNetworks {
		resolved[n] = n.DefaultRPCURL()
		if u, ok := urls[n]; ok && u != "" {
			resolved[n] = u
		}
	}

	return &SuiClient{
		urls:    resolved,
		clients: make(map[model.Network]jsonrpc.RPCClient),
	}
}

// RPCURL returns the endpoint used for network.
func (c *SuiClient) RPCURL(network model.Network) string {
	return c.urls[network]
}

func (c *SuiClient) rpc(network model.Network) (jsonrpc.RPCClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.clients[network]; ok {
		return cl, nil
	}

	url, ok := c.urls[network]
	if !ok {
		return nil, fmt.Errorf("%w: unknown network %v", model.ErrValidation, network)
	}
	cl := jsonrpc.NewClient(url)
	c.clients[network] = cl
	return cl, nil
}

// balanceResponse is the result of suix_getBalance.
type balanceResponse struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// GetBalance gets the SUI balance of address in MIST
func (c *SuiClient) GetBalance(ctx context.Context, address string,
	network model.Network) (uint64, error) {

	cl, err := c.rpc(network)
	if err != nil {
		return 0, err
	}

	var resp balanceResponse
	err = cl.CallForInto(ctx, &resp, "suix_getBalance",
		[]interface{}{address, SUICoinType})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get balance: %w", model.ErrNetwork, err)
	}

	mist, err := strconv.ParseUint(resp.TotalBalance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid balance %q in response", model.ErrNetwork, resp.TotalBalance)
	}

	log.Debugf("Balance of %s on %v: %d MIST (%d coin objects)",
		address, network, mist, resp.CoinObjectCount)
	return mist, nil
}

// ChainIdentifier returns the chain identifier of network, used to check
// that an endpoint is reachable.
func (c *SuiClient) ChainIdentifier(ctx context.Context, network model.Network) (string, error) {
	cl, err := c.rpc(network)
	if err != nil {
		return "", err
	}

	var id string
	if err := cl.CallForInto(ctx, &id, "sui_getChainIdentifier", []interface{}{}); err != nil {
		return "", fmt.Errorf("%w: failed to get chain identifier: %w", model.ErrNetwork, err)
	}
	return id, nil
}
