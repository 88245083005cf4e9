package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	dbrepos "github.com/psapy/dv-backend/internal/infrastructure/database/repositories"
)

func newTestReconciler(db *gorm.DB, rate *fakeRateLookup) *CallbackReconciler {
	return NewCallbackReconciler(
		db,
		RepositoryFactories{
			Transactions: dbrepos.NewTransactionRepository,
			Currencies:   dbrepos.NewCurrencyRepository,
			Users:        dbrepos.NewUserRepository,
		},
		rate,
		"binance",
		zap.NewNop(),
	)
}

func testNotification() entities.TransferNotification {
	return entities.TransferNotification{
		Tx:              "tx-1",
		Sender:          "hot-1",
		Address:         "payout-1",
		Amount:          decimal.RequireFromString("0.5"),
		ContractAddress: "",
		Blockchain:      entities.BlockchainTron,
		OwnerID:         "owner-1",
		Energy:          64000,
		Bandwidth:       345,
	}
}

func transactionCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.Transaction{}).Count(&count).Error)
	return count
}

func TestReconcileWritesTransaction(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.NewFromInt(3)})
	require.NoError(t, r.Reconcile(context.Background(), testNotification()))

	var tx entities.Transaction
	require.NoError(t, db.First(&tx).Error)

	assert.Equal(t, 1, tx.UserID)
	assert.Equal(t, 1, tx.CurrencyID)
	assert.Equal(t, "tx-1", tx.TxID)
	assert.Equal(t, entities.TransactionTypeTransfer, tx.Type)
	assert.Equal(t, "hot-1", tx.FromAddress)
	assert.Equal(t, "payout-1", tx.ToAddress)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, tx.AmountUSD.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, tx.Rate.Equal(decimal.NewFromInt(3)))
	assert.EqualValues(t, 64000, tx.Energy)
	assert.EqualValues(t, 345, tx.Bandwidth)
}

func TestReconcileNegativeAmountRejected(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	n := testNotification()
	n.Amount = decimal.RequireFromString("-0.5")

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.NewFromInt(3)})
	err := r.Reconcile(context.Background(), n)

	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.EqualValues(t, 0, transactionCount(t, db))
}

func TestReconcileDuplicateIsNoOp(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.NewFromInt(3)})
	require.NoError(t, r.Reconcile(context.Background(), testNotification()))
	require.NoError(t, r.Reconcile(context.Background(), testNotification()))

	assert.EqualValues(t, 1, transactionCount(t, db))
}

func TestReconcileRollsBackOnRateFailure(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	r := newTestReconciler(db, &fakeRateLookup{err: errors.New("rate feed down")})
	err := r.Reconcile(context.Background(), testNotification())

	require.Error(t, err)
	assert.EqualValues(t, 0, transactionCount(t, db))
}

func TestReconcileUnknownCurrencyRollsBack(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	n := testNotification()
	n.ContractAddress = "TUnknownContract"

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.NewFromInt(3)})
	err := r.Reconcile(context.Background(), n)

	require.Error(t, err)
	assert.EqualValues(t, 0, transactionCount(t, db))
}

func TestReconcileTruncatesUSDTowardZero(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	n := testNotification()
	n.Amount = decimal.NewFromInt(1)

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.RequireFromString("0.129")})
	require.NoError(t, r.Reconcile(context.Background(), n))

	var tx entities.Transaction
	require.NoError(t, db.First(&tx).Error)
	assert.True(t, tx.AmountUSD.Equal(decimal.RequireFromString("0.12")),
		"got %s", tx.AmountUSD)
}

func TestReconcilePreservesNetworkTime(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	networkTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := testNotification()
	n.Time = &networkTime
	n.IsManual = true

	r := newTestReconciler(db, &fakeRateLookup{rate: decimal.NewFromInt(3)})
	require.NoError(t, r.Reconcile(context.Background(), n))

	var tx entities.Transaction
	require.NoError(t, db.First(&tx).Error)
	require.NotNil(t, tx.NetworkTime)
	assert.True(t, tx.NetworkTime.Equal(networkTime))
	assert.True(t, tx.IsManual)
}
