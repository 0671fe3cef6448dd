package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
	suiCoinID    = "sui"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: coingeckoAPI,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PriceResponse response from CoinGecko API, keyed by coin id then currency.
type PriceResponse map[string]map[string]float64

// GetSUIRate gets the SUI price in currency (e.g. "usd"), formatted with
// two decimals.
func (c *CoinGeckoClient) GetSUIRate(ctx context.Context, currency string) (string, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return "", fmt.Errorf("%w: currency cannot be empty", model.ErrValidation)
	}

	q := url.Values{}
	q.Set("ids", suiCoinID)
	q.Set("vs_currencies", currency)
	reqURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get rate: %w", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: failed to get rate: status %d", model.ErrNetwork, resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode rate: %w", model.ErrNetwork, err)
	}

	price, ok := priceResp[suiCoinID][currency]
	if !ok {
		return "", fmt.Errorf("%w: no %s rate in response", model.ErrNetwork, currency)
	}

	rate := strconv.FormatFloat(price, 'f', 2, 64)
	return rate, nil
}
