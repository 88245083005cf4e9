package repositories

import (
	"context"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// BlockchainRepository defines the interface for blockchain reference data
type BlockchainRepository interface {
	GetByID(ctx context.Context, id int) (*entities.Blockchain, error)
	GetByName(ctx context.Context, name string) (*entities.Blockchain, error)
	GetAll(ctx context.Context) ([]entities.Blockchain, error)
}
