package sui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/sui-local-wallet/internal/balance"
	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

// PriceSource quotes SUI in a fiat currency.
type PriceSource interface {
	GetSUIRate(ctx context.Context, currency string) (string, error)
}

// GetBalance queries the balance of address once. The fiat fields are filled
// when prices is not nil and a rate is available.
func GetBalance(ctx context.Context, client balance.Client, prices PriceSource,
	address string, network model.Network, currency string) (*model.BalanceResponse, error) {

	mist, err := client.GetBalance(ctx, address, network)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	resp := &model.BalanceResponse{
		Address: address,
		Network: network,
		MIST:    strconv.FormatUint(mist, 10),
		SUI:     common.MistToSUI(mist),
	}

	if prices == nil || currency == "" {
		return resp, nil
	}

	// Get SUI/<currency> rate. A missing rate is not fatal.
	rate, err := prices.GetSUIRate(ctx, currency)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to get rate: %v", err)
		return resp, nil
	}
	fiat, err := common.FiatValue(mist, rate)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to convert: %v", err)
		return resp, nil
	}

	resp.Rate = rate
	resp.Currency = currency
	resp.Fiat = fiat
	return resp, nil
}
