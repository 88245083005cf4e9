package repositories

import (
	"context"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// WithdrawalWalletRepository defines the interface for withdrawal wallet
// configuration lookups. Wallet addresses are returned in configured order.
type WithdrawalWalletRepository interface {
	GetByID(ctx context.Context, id int) (*entities.WithdrawalWallet, error)
	GetEnabled(ctx context.Context) ([]entities.WithdrawalWallet, error)
	GetEnabledByUserAndChain(ctx context.Context, userID, chainID int) (*entities.WithdrawalWallet, error)
	GetAddresses(ctx context.Context, walletID int) ([]entities.WithdrawalWalletAddress, error)
	Create(ctx context.Context, wallet *entities.WithdrawalWallet) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
}
