package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/psapy/dv-backend/internal/domain/entities"
	"github.com/psapy/dv-backend/internal/domain/providers"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.Blockchain{},
		&entities.Currency{},
		&entities.User{},
		&entities.WithdrawalWallet{},
		&entities.WithdrawalWalletAddress{},
		&entities.Transfer{},
		&entities.Transaction{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// seedBase inserts the tron blockchain, its balance currency, one user and an
// enabled two-address wallet, and returns the wallet.
func seedBase(t *testing.T, db *gorm.DB) *entities.WithdrawalWallet {
	t.Helper()

	require.NoError(t, db.Create(&entities.Blockchain{
		ID:   1,
		Name: entities.BlockchainTron,
	}).Error)

	require.NoError(t, db.Create(&entities.Currency{
		ID:         1,
		ChainID:    1,
		Name:       "Tron",
		Symbol:     "TRX",
		Address:    "",
		HasBalance: true,
	}).Error)

	require.NoError(t, db.Create(&entities.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		ProcessingID: "owner-1",
	}).Error)

	wallet := &entities.WithdrawalWallet{
		ID:         1,
		UserID:     1,
		Blockchain: entities.BlockchainTron,
		ChainID:    1,
		Enabled:    true,
		MinBalance: decimal.NewFromInt(1),
		Addresses: []entities.WithdrawalWalletAddress{
			{Address: "payout-1", Position: 0},
			{Address: "payout-2", Position: 1},
		},
	}
	require.NoError(t, db.Create(wallet).Error)
	return wallet
}

type fakeBalanceSource struct {
	balances []providers.AddressBalance
	err      error
}

func (f *fakeBalanceSource) GetAddressBalances(ctx context.Context, ownerID, blockchain string) ([]providers.AddressBalance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balances, nil
}

type fakeResourceSource struct {
	resources []providers.WalletResource
	err       error
}

func (f *fakeResourceSource) GetWalletResources(ctx context.Context, ownerID string) ([]providers.WalletResource, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resources, nil
}

type fakeRateLookup struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRateLookup) GetRate(ctx context.Context, exchange, base, quote string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.rate, nil
}

func tronBalance(address string, amount, amountUSD string) providers.AddressBalance {
	return providers.AddressBalance{
		Address:    address,
		Blockchain: entities.BlockchainTron,
		Amount:     decimal.RequireFromString(amount),
		AmountUSD:  decimal.RequireFromString(amountUSD),
	}
}

func tronEnergy(energy int64) []providers.WalletResource {
	return []providers.WalletResource{
		{Blockchain: entities.BlockchainTron, Energy: energy},
	}
}

func transferCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entities.Transfer{}).Count(&count).Error)
	return count
}

func seedFailedTransfer(t *testing.T, db *gorm.DB, fromAddress string, currencyID int, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Create(&entities.Transfer{
		UserID:      1,
		CurrencyID:  currencyID,
		FromAddress: fromAddress,
		ToAddress:   "payout-1",
		Amount:      decimal.NewFromInt(1),
		AmountUSD:   decimal.NewFromInt(1),
		Status:      entities.TransferStatusFailed,
		Blockchain:  entities.BlockchainTron,
		CreateAt:    time.Now().Add(-age),
	}).Error)
}
