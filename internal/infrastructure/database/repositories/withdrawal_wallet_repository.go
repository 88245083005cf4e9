package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// withdrawalWalletRepository implements WithdrawalWalletRepository interface
type withdrawalWalletRepository struct {
	db *gorm.DB
}

// NewWithdrawalWalletRepository creates a new withdrawal wallet repository
func NewWithdrawalWalletRepository(db *gorm.DB) domainRepos.WithdrawalWalletRepository {
	return &withdrawalWalletRepository{
		db: db,
	}
}

// GetByID retrieves a wallet with its addresses
func (r *withdrawalWalletRepository) GetByID(ctx context.Context, id int) (*entities.WithdrawalWallet, error) {
	var wallet entities.WithdrawalWallet
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&wallet, id).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetEnabled retrieves all enabled wallets with their addresses
func (r *withdrawalWalletRepository) GetEnabled(ctx context.Context) ([]entities.WithdrawalWallet, error) {
	var wallets []entities.WithdrawalWallet
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("enabled = ?", true).
		Find(&wallets).Error
	return wallets, err
}

// GetEnabledByUserAndChain retrieves the single enabled wallet for a
// (user, chain) pair
func (r *withdrawalWalletRepository) GetEnabledByUserAndChain(ctx context.Context, userID, chainID int) (*entities.WithdrawalWallet, error) {
	var wallet entities.WithdrawalWallet
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ? AND chain_id = ? AND enabled = ?", userID, chainID, true).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetAddresses retrieves the wallet's payout addresses in configured order
func (r *withdrawalWalletRepository) GetAddresses(ctx context.Context, walletID int) ([]entities.WithdrawalWalletAddress, error) {
	var addresses []entities.WithdrawalWalletAddress
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("position ASC").
		Find(&addresses).Error
	return addresses, err
}

// Create creates a wallet together with its addresses
func (r *withdrawalWalletRepository) Create(ctx context.Context, wallet *entities.WithdrawalWallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

// SetEnabled flips the enabled flag; wallets are never deleted
func (r *withdrawalWalletRepository) SetEnabled(ctx context.Context, id int, enabled bool) error {
	return r.db.WithContext(ctx).Model(&entities.WithdrawalWallet{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}
