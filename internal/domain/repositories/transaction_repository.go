package repositories

import (
	"context"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// TransactionRepository defines the interface for the confirmed-transaction
// ledger. Rows are written once and never mutated.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error

	// ExistsByTxFromTo checks the (tx id, from, to) uniqueness triple.
	ExistsByTxFromTo(ctx context.Context, txID, fromAddress, toAddress string) (bool, error)

	// FindPriorTransferDestination returns the destination of the most
	// recent transfer-type row from fromAddress whose destination is one of
	// the candidates; empty string when none exists.
	FindPriorTransferDestination(ctx context.Context, fromAddress string, candidates []string) (string, error)

	GetByTypeFromTo(ctx context.Context, txType entities.TransactionType, fromAddress, toAddress string, limit int) ([]entities.Transaction, error)
}
