// Package providers defines the contracts of the external collaborators the
// core depends on: the blockchain-processing provider and the exchange-rate
// feed. Live HTTP clients and test fakes implement the same interfaces.
package providers

import (
	"context"

	"github.com/shopspring/decimal"
)

// AddressBalance is a hot-wallet address balance snapshot reported by the
// processing provider. It is read-only reference data, refreshed on each
// dispatch cycle.
type AddressBalance struct {
	Address    string          `json:"address"`
	Blockchain string          `json:"blockchain"`
	Amount     decimal.Decimal `json:"amount"`
	AmountUSD  decimal.Decimal `json:"amount_usd"`
}

// WalletResource is a per-blockchain resource counter of an owner's wallet.
type WalletResource struct {
	Blockchain string `json:"blockchain"`
	Energy     int64  `json:"energy"`
	Bandwidth  int64  `json:"bandwidth"`
}

// BalanceSource returns address balances held by an owner on a blockchain.
type BalanceSource interface {
	GetAddressBalances(ctx context.Context, ownerID, blockchain string) ([]AddressBalance, error)
}

// WalletResourceSource returns per-blockchain wallet resource counters for
// an owner.
type WalletResourceSource interface {
	GetWalletResources(ctx context.Context, ownerID string) ([]WalletResource, error)
}

// RateLookup returns the conversion rate of a base asset into a quote asset
// on a named exchange.
type RateLookup interface {
	GetRate(ctx context.Context, exchange, base, quote string) (decimal.Decimal, error)
}
