package services

import (
	"context"
	"math/rand"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// DestinationResolver picks the payout address a source address should send
// to. A source that already has a transfer-type transaction into one of the
// wallet's addresses keeps that destination; first-time sources get a
// uniformly random pick from the wallet's address set.
//
// Concurrent first-time dispatches for the same source may pick different
// destinations before any transaction row exists. Known limitation.
type DestinationResolver struct {
	transactionRepo domainRepos.TransactionRepository
	pick            func(n int) int
}

// NewDestinationResolver creates a new destination resolver
func NewDestinationResolver(transactionRepo domainRepos.TransactionRepository) *DestinationResolver {
	return &DestinationResolver{
		transactionRepo: transactionRepo,
		pick:            rand.Intn,
	}
}

// Resolve returns the payout address for fromAddress within the wallet's
// configured address set
func (r *DestinationResolver) Resolve(ctx context.Context, fromAddress string, wallet *entities.WithdrawalWallet) (string, error) {
	addrs := wallet.AddressSet()
	if len(addrs) == 0 {
		return "", ErrNoPayoutAddresses
	}

	dest, err := r.transactionRepo.FindPriorTransferDestination(ctx, fromAddress, addrs)
	if err != nil {
		return "", err
	}
	if dest != "" {
		return dest, nil
	}

	return addrs[r.pick(len(addrs))], nil
}
