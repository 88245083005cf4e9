package repositories

import (
	"context"
	"time"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// TransferRepository defines the interface for transfer intent operations
type TransferRepository interface {
	// Create operations
	Create(ctx context.Context, transfer *entities.Transfer) error

	// Read operations
	GetByID(ctx context.Context, id int) (*entities.Transfer, error)
	GetByStatus(ctx context.Context, status entities.TransferStatus, limit int) ([]entities.Transfer, error)
	GetByUserID(ctx context.Context, userID int, limit, offset int) ([]entities.Transfer, error)

	// Dispatch support
	CountInFlight(ctx context.Context, blockchain string) (int64, error)
	ExistsInFlight(ctx context.Context, fromAddress string, currencyID int) (bool, error)
	HasRecentFailed(ctx context.Context, fromAddress string, currencyID int, since time.Time) (bool, error)

	// Update operations. UpdateStatus rejects illegal lifecycle transitions
	// (e.g. Success -> Sending).
	UpdateStatus(ctx context.Context, id int, status entities.TransferStatus) error
}
