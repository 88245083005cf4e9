package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// blockchainRepository implements BlockchainRepository interface
type blockchainRepository struct {
	db *gorm.DB
}

// NewBlockchainRepository creates a new blockchain repository
func NewBlockchainRepository(db *gorm.DB) domainRepos.BlockchainRepository {
	return &blockchainRepository{db: db}
}

// GetByID retrieves blockchain by ID
func (r *blockchainRepository) GetByID(ctx context.Context, id int) (*entities.Blockchain, error) {
	var blockchain entities.Blockchain
	err := r.db.WithContext(ctx).First(&blockchain, id).Error
	if err != nil {
		return nil, err
	}
	return &blockchain, nil
}

// GetByName retrieves blockchain by name
func (r *blockchainRepository) GetByName(ctx context.Context, name string) (*entities.Blockchain, error) {
	var blockchain entities.Blockchain
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&blockchain).Error
	if err != nil {
		return nil, err
	}
	return &blockchain, nil
}

// GetAll retrieves all blockchains
func (r *blockchainRepository) GetAll(ctx context.Context) ([]entities.Blockchain, error) {
	var blockchains []entities.Blockchain
	err := r.db.WithContext(ctx).Find(&blockchains).Error
	return blockchains, err
}
