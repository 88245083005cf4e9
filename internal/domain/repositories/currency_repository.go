package repositories

import (
	"context"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// CurrencyRepository defines the interface for currency reference data
type CurrencyRepository interface {
	GetByID(ctx context.Context, id int) (*entities.Currency, error)
	GetBySymbol(ctx context.Context, symbol string) (*entities.Currency, error)
	GetWithBalanceByChain(ctx context.Context, chainID int) (*entities.Currency, error)
	GetByContractAndBlockchain(ctx context.Context, contractAddress, blockchain string) (*entities.Currency, error)
	GetAll(ctx context.Context) ([]entities.Currency, error)
}
