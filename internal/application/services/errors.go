package services

import "github.com/pkg/errors"

var (
	// ErrNegativeAmount rejects callback notifications carrying a negative
	// amount before any state change.
	ErrNegativeAmount = errors.New("Negative amount.")

	// ErrNoWithdrawalWallet is returned when a targeted withdrawal request
	// has no enabled wallet for the currency's chain.
	ErrNoWithdrawalWallet = errors.New("no enabled withdrawal wallet for chain")

	// ErrNoPayoutAddresses is returned when a wallet has no configured
	// payout addresses to resolve a destination from.
	ErrNoPayoutAddresses = errors.New("withdrawal wallet has no payout addresses")

	// ErrInvalidAddress is returned when a requested source address is not
	// well formed for the wallet's blockchain.
	ErrInvalidAddress = errors.New("invalid address for blockchain")

	// ErrBalanceNotFound is returned when a targeted withdrawal names an
	// address the processing provider reports no balance for.
	ErrBalanceNotFound = errors.New("no balance for requested address")

	// ErrTransferInFlight is returned when a requested source address
	// already has a non-terminal transfer for the currency.
	ErrTransferInFlight = errors.New("transfer already in flight for address")
)
