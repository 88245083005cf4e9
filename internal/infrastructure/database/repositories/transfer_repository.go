package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// ErrIllegalTransition is returned when a status update would violate the
// transfer lifecycle.
var ErrIllegalTransition = errors.New("illegal transfer status transition")

// transferRepository implements TransferRepository interface
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *gorm.DB) domainRepos.TransferRepository {
	return &transferRepository{
		db: db,
	}
}

// Create creates a new transfer intent
func (r *transferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// GetByID retrieves a transfer by ID
func (r *transferRepository) GetByID(ctx context.Context, id int) (*entities.Transfer, error) {
	var transfer entities.Transfer
	err := r.db.WithContext(ctx).First(&transfer, id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// GetByStatus retrieves transfers by status, oldest first
func (r *transferRepository) GetByStatus(ctx context.Context, status entities.TransferStatus, limit int) ([]entities.Transfer, error) {
	var transfers []entities.Transfer
	query := r.db.WithContext(ctx).Where("status = ?", status).Order("create_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&transfers).Error
	return transfers, err
}

// GetByUserID retrieves transfers by user ID, newest first
func (r *transferRepository) GetByUserID(ctx context.Context, userID int, limit, offset int) ([]entities.Transfer, error) {
	var transfers []entities.Transfer
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("create_at DESC").Find(&transfers).Error
	return transfers, err
}

// CountInFlight counts transfers on a blockchain that are not terminal yet
func (r *transferRepository) CountInFlight(ctx context.Context, blockchain string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transfer{}).
		Where("blockchain = ? AND status IN ?", blockchain,
			[]entities.TransferStatus{entities.TransferStatusWaiting, entities.TransferStatusSending}).
		Count(&count).Error
	return count, err
}

// ExistsInFlight checks whether a non-terminal transfer exists for the
// (from address, currency) pair
func (r *transferRepository) ExistsInFlight(ctx context.Context, fromAddress string, currencyID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transfer{}).
		Where("from_address = ? AND currency_id = ? AND status IN ?", fromAddress, currencyID,
			[]entities.TransferStatus{entities.TransferStatusWaiting, entities.TransferStatusSending}).
		Count(&count).Error
	return count > 0, err
}

// HasRecentFailed checks whether a failed transfer for the (from address,
// currency) pair was created after the given time
func (r *transferRepository) HasRecentFailed(ctx context.Context, fromAddress string, currencyID int, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transfer{}).
		Where("from_address = ? AND currency_id = ? AND status = ? AND create_at > ?",
			fromAddress, currencyID, entities.TransferStatusFailed, since).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus advances a transfer's lifecycle. The current row is read
// first and the transition is validated; illegal moves are rejected with
// ErrIllegalTransition.
func (r *transferRepository) UpdateStatus(ctx context.Context, id int, status entities.TransferStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var transfer entities.Transfer
		if err := tx.First(&transfer, id).Error; err != nil {
			return err
		}
		if !transfer.Status.CanTransition(status) {
			return errors.Wrapf(ErrIllegalTransition, "%s -> %s", transfer.Status, status)
		}
		return tx.Model(&entities.Transfer{}).Where("id = ?", id).
			Update("status", status).Error
	})
}
