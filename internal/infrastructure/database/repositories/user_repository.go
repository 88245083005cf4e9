package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepos.UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByProcessingID retrieves user by the owner identifier of the
// processing provider
func (r *userRepository) GetByProcessingID(ctx context.Context, processingID string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("processing_id = ?", processingID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll retrieves all users
func (r *userRepository) GetAll(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Find(&users).Error
	return users, err
}
