package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository. Pass a
// *gorm.DB obtained inside db.Transaction to scope the repository to that
// transaction.
func NewTransactionRepository(db *gorm.DB) domainRepos.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create writes a confirmed transaction row
func (r *transactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ExistsByTxFromTo checks the (tx id, from, to) uniqueness triple
func (r *transactionRepository) ExistsByTxFromTo(ctx context.Context, txID, fromAddress, toAddress string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Where("tx_id = ? AND from_address = ? AND to_address = ?", txID, fromAddress, toAddress).
		Count(&count).Error
	return count > 0, err
}

// FindPriorTransferDestination returns the destination of the most recent
// transfer-type row from fromAddress into the candidate set, or an empty
// string when no such row exists
func (r *transactionRepository) FindPriorTransferDestination(ctx context.Context, fromAddress string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	var tx entities.Transaction
	err := r.db.WithContext(ctx).
		Where("type = ? AND from_address = ? AND to_address IN ?",
			entities.TransactionTypeTransfer, fromAddress, candidates).
		Order("create_at DESC").
		First(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return tx.ToAddress, nil
}

// GetByTypeFromTo retrieves transactions by type and address pair, newest
// first
func (r *transactionRepository) GetByTypeFromTo(ctx context.Context, txType entities.TransactionType, fromAddress, toAddress string, limit int) ([]entities.Transaction, error) {
	var txs []entities.Transaction
	query := r.db.WithContext(ctx).
		Where("type = ? AND from_address = ? AND to_address = ?", txType, fromAddress, toAddress).
		Order("create_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&txs).Error
	return txs, err
}
