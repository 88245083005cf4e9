package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

func newTransaction(txID, from, to string, createAt time.Time) *entities.Transaction {
	return &entities.Transaction{
		UserID:      1,
		CurrencyID:  1,
		TxID:        txID,
		Type:        entities.TransactionTypeTransfer,
		FromAddress: from,
		ToAddress:   to,
		Amount:      decimal.NewFromInt(1),
		AmountUSD:   decimal.NewFromInt(1),
		Rate:        decimal.NewFromInt(1),
		CreateAt:    createAt,
	}
}

func TestTransactionExistsByTxFromTo(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransaction("tx-1", "hot-1", "payout-1", time.Now())))

	exists, err := repo.ExistsByTxFromTo(ctx, "tx-1", "hot-1", "payout-1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Any differing component of the triple means a different transaction.
	exists, err = repo.ExistsByTxFromTo(ctx, "tx-1", "hot-1", "payout-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionUniqueTripleEnforced(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransaction("tx-1", "hot-1", "payout-1", time.Now())))

	// The composite unique index is the hard stop behind the existence
	// check.
	err := repo.Create(ctx, newTransaction("tx-1", "hot-1", "payout-1", time.Now()))
	assert.Error(t, err)
}

func TestFindPriorTransferDestination(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransaction("tx-1", "hot-1", "payout-1", time.Now().Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newTransaction("tx-2", "hot-1", "payout-2", time.Now().Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newTransaction("tx-3", "other-hot", "payout-1", time.Now())))

	// Most recent match for hot-1 within the candidate set.
	dest, err := repo.FindPriorTransferDestination(ctx, "hot-1", []string{"payout-1", "payout-2"})
	require.NoError(t, err)
	assert.Equal(t, "payout-2", dest)

	// Candidate set narrows the match.
	dest, err = repo.FindPriorTransferDestination(ctx, "hot-1", []string{"payout-1"})
	require.NoError(t, err)
	assert.Equal(t, "payout-1", dest)

	// Unknown source has no prior destination.
	dest, err = repo.FindPriorTransferDestination(ctx, "hot-unknown", []string{"payout-1", "payout-2"})
	require.NoError(t, err)
	assert.Equal(t, "", dest)

	// Empty candidate set short-circuits.
	dest, err = repo.FindPriorTransferDestination(ctx, "hot-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "", dest)
}
