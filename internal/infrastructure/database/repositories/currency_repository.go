package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// currencyRepository implements CurrencyRepository interface
type currencyRepository struct {
	db *gorm.DB
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(db *gorm.DB) domainRepos.CurrencyRepository {
	return &currencyRepository{db: db}
}

// GetByID retrieves currency by ID
func (r *currencyRepository) GetByID(ctx context.Context, id int) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.db.WithContext(ctx).Preload("Blockchain").First(&currency, id).Error
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

// GetBySymbol retrieves currency by symbol
func (r *currencyRepository) GetBySymbol(ctx context.Context, symbol string) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.db.WithContext(ctx).Preload("Blockchain").Where("symbol = ?", symbol).First(&currency).Error
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

// GetWithBalanceByChain retrieves the balance-bearing currency of a chain
func (r *currencyRepository) GetWithBalanceByChain(ctx context.Context, chainID int) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.db.WithContext(ctx).Preload("Blockchain").
		Where("chain_id = ? AND has_balance = ? AND is_fiat = ?", chainID, true, false).
		First(&currency).Error
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

// GetByContractAndBlockchain retrieves currency by contract address and
// blockchain name; the contract address is empty for native assets
func (r *currencyRepository) GetByContractAndBlockchain(ctx context.Context, contractAddress, blockchain string) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.db.WithContext(ctx).Preload("Blockchain").
		Joins("JOIN blockchain ON blockchain.id = currency.chain_id").
		Where("currency.address = ? AND blockchain.name = ?", contractAddress, blockchain).
		First(&currency).Error
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

// GetAll retrieves all currencies
func (r *currencyRepository) GetAll(ctx context.Context) ([]entities.Currency, error) {
	var currencies []entities.Currency
	err := r.db.WithContext(ctx).Preload("Blockchain").Find(&currencies).Error
	return currencies, err
}
