package repositories

import (
	"context"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByProcessingID(ctx context.Context, processingID string) (*entities.User, error)
	GetAll(ctx context.Context) ([]entities.User, error)
}
