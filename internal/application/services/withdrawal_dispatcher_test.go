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
	"github.com/psapy/dv-backend/internal/domain/providers"
	dbrepos "github.com/psapy/dv-backend/internal/infrastructure/database/repositories"
)

func newTestDispatcher(db *gorm.DB, balances *fakeBalanceSource, resources *fakeResourceSource, rate *fakeRateLookup) *WithdrawalDispatcher {
	transactionRepo := dbrepos.NewTransactionRepository(db)
	return NewWithdrawalDispatcher(
		dbrepos.NewUserRepository(db),
		dbrepos.NewWithdrawalWalletRepository(db),
		dbrepos.NewCurrencyRepository(db),
		dbrepos.NewTransferRepository(db),
		balances,
		resources,
		rate,
		NewDestinationResolver(transactionRepo),
		"binance",
		zap.NewNop(),
	)
}

func TestMaxResourceThrottledTransfers(t *testing.T) {
	tests := []struct {
		name              string
		energyAvailable   int64
		energyPerTransfer int64
		inFlight          int64
		want              int
	}{
		{"one transfer left after one in flight", 128000, 64000, 1, 1},
		{"below one transfer worth of energy", 50000, 64000, 0, 0},
		{"exactly two transfers", 128000, 64000, 0, 2},
		{"in-flight exceeds budget", 64000, 64000, 3, 0},
		{"zero energy", 0, 64000, 0, 0},
		{"zero cost guards division", 128000, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxResourceThrottledTransfers(tt.energyAvailable, tt.energyPerTransfer, tt.inFlight)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestMaxResourceThrottledTransfersMonotonic(t *testing.T) {
	prev := MaxResourceThrottledTransfers(512000, 64000, 0)
	for inFlight := int64(1); inFlight <= 12; inFlight++ {
		got := MaxResourceThrottledTransfers(512000, 64000, inFlight)
		assert.LessOrEqual(t, got, prev, "budget must not grow with in-flight count")
		prev = got
	}
}

func TestDispatchForWalletEligibilityThreshold(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-1", "0.5", "1.5"),
		tronBalance("hot-2", "0.1", "0.3"),
	}}
	resources := &fakeResourceSource{resources: tronEnergy(1_000_000)}
	rate := &fakeRateLookup{rate: decimal.NewFromInt(3)}

	d := newTestDispatcher(db, balances, resources, rate)
	require.NoError(t, d.DispatchForWallet(context.Background(), wallet))

	var transfers []entities.Transfer
	require.NoError(t, db.Find(&transfers).Error)
	require.Len(t, transfers, 1)

	got := transfers[0]
	assert.Equal(t, "hot-1", got.FromAddress)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, got.AmountUSD.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, entities.TransferStatusWaiting, got.Status)
	assert.Contains(t, []string{"payout-1", "payout-2"}, got.ToAddress)
}

func TestDispatchForWalletZeroBudgetSkips(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-1", "100", "300"),
	}}
	resources := &fakeResourceSource{resources: tronEnergy(50000)}
	rate := &fakeRateLookup{rate: decimal.NewFromInt(3)}

	d := newTestDispatcher(db, balances, resources, rate)
	require.NoError(t, d.DispatchForWallet(context.Background(), wallet))

	assert.EqualValues(t, 0, transferCount(t, db))
}

func TestDispatchForWalletBudgetCapsBatch(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-1", "10", "30"),
		tronBalance("hot-2", "20", "60"),
		tronBalance("hot-3", "30", "90"),
	}}
	// Energy for exactly two transfers.
	resources := &fakeResourceSource{resources: tronEnergy(128000)}
	rate := &fakeRateLookup{rate: decimal.NewFromInt(3)}

	d := newTestDispatcher(db, balances, resources, rate)
	require.NoError(t, d.DispatchForWallet(context.Background(), wallet))

	assert.EqualValues(t, 2, transferCount(t, db))
}

func TestDispatchForWalletIdempotentAcrossCalls(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-1", "10", "30"),
	}}
	resources := &fakeResourceSource{resources: tronEnergy(1_000_000)}
	rate := &fakeRateLookup{rate: decimal.NewFromInt(3)}

	d := newTestDispatcher(db, balances, resources, rate)
	require.NoError(t, d.DispatchForWallet(context.Background(), wallet))
	require.NoError(t, d.DispatchForWallet(context.Background(), wallet))

	// The second sweep must see the first transfer as in flight.
	assert.EqualValues(t, 1, transferCount(t, db))
}

func TestDispatchForWalletFailedCooldown(t *testing.T) {
	t.Run("fresh failure suppresses dispatch", func(t *testing.T) {
		db := newTestDB(t)
		wallet := seedBase(t, db)
		seedFailedTransfer(t, db, "hot-1", 1, 30*time.Second)

		balances := &fakeBalanceSource{balances: []providers.AddressBalance{
			tronBalance("hot-1", "10", "30"),
		}}
		d := newTestDispatcher(db, balances,
			&fakeResourceSource{resources: tronEnergy(1_000_000)},
			&fakeRateLookup{rate: decimal.NewFromInt(3)})

		require.NoError(t, d.DispatchForWallet(context.Background(), wallet))
		assert.EqualValues(t, 1, transferCount(t, db)) // only the seeded failure
	})

	t.Run("aged failure does not suppress", func(t *testing.T) {
		db := newTestDB(t)
		wallet := seedBase(t, db)
		seedFailedTransfer(t, db, "hot-1", 1, 2*time.Minute)

		balances := &fakeBalanceSource{balances: []providers.AddressBalance{
			tronBalance("hot-1", "10", "30"),
		}}
		d := newTestDispatcher(db, balances,
			&fakeResourceSource{resources: tronEnergy(1_000_000)},
			&fakeRateLookup{rate: decimal.NewFromInt(3)})

		require.NoError(t, d.DispatchForWallet(context.Background(), wallet))
		assert.EqualValues(t, 2, transferCount(t, db))
	})
}

func TestSelectNextForWalletPicksHighestUSD(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-low", "5", "5"),
		tronBalance("hot-high", "10", "10"),
		tronBalance("hot-dust", "0.1", "0.1"), // below wallet min balance
	}}
	d := newTestDispatcher(db, balances,
		&fakeResourceSource{resources: tronEnergy(1_000_000)},
		&fakeRateLookup{rate: decimal.NewFromInt(1)})

	transfer, err := d.SelectNextForWallet(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, transfer)

	assert.Equal(t, "hot-high", transfer.FromAddress)
	assert.Equal(t, entities.TransferStatusSending, transfer.Status)
}

func TestSelectNextForWalletNoBudget(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	// One in-flight transfer eats the whole 64000 budget.
	require.NoError(t, db.Create(&entities.Transfer{
		UserID: 1, CurrencyID: 1,
		FromAddress: "hot-old", ToAddress: "payout-1",
		Amount: decimal.NewFromInt(1), AmountUSD: decimal.NewFromInt(1),
		Status: entities.TransferStatusSending, Blockchain: entities.BlockchainTron,
		CreateAt: time.Now(),
	}).Error)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance("hot-1", "10", "10"),
	}}
	d := newTestDispatcher(db, balances,
		&fakeResourceSource{resources: tronEnergy(64000)},
		&fakeRateLookup{rate: decimal.NewFromInt(1)})

	transfer, err := d.SelectNextForWallet(context.Background(), wallet)
	require.NoError(t, err)
	assert.Nil(t, transfer)
}

func TestSelectNextForWalletNoCandidate(t *testing.T) {
	db := newTestDB(t)
	wallet := seedBase(t, db)

	d := newTestDispatcher(db, &fakeBalanceSource{},
		&fakeResourceSource{resources: tronEnergy(1_000_000)},
		&fakeRateLookup{rate: decimal.NewFromInt(1)})

	transfer, err := d.SelectNextForWallet(context.Background(), wallet)
	require.NoError(t, err)
	assert.Nil(t, transfer)
}

func TestDispatchForAddressWithdrawal(t *testing.T) {
	// Valid base58check tron address (USDT contract).
	const source = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

	db := newTestDB(t)
	seedBase(t, db)

	var user entities.User
	require.NoError(t, db.First(&user, 1).Error)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance(source, "0.2", "0.6"),
	}}
	// No energy at all: the manual path must not be throttled.
	d := newTestDispatcher(db, balances,
		&fakeResourceSource{resources: tronEnergy(0)},
		&fakeRateLookup{rate: decimal.NewFromInt(3)})

	require.NoError(t, d.DispatchForAddressWithdrawal(context.Background(), &user, 1, source))

	var transfers []entities.Transfer
	require.NoError(t, db.Find(&transfers).Error)
	require.Len(t, transfers, 1)
	assert.Equal(t, source, transfers[0].FromAddress)
	assert.Equal(t, entities.TransferStatusWaiting, transfers[0].Status)
	assert.True(t, transfers[0].AmountUSD.Equal(decimal.RequireFromString("0.6")))
}

func TestDispatchForAddressWithdrawalInvalidAddress(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	var user entities.User
	require.NoError(t, db.First(&user, 1).Error)

	d := newTestDispatcher(db, &fakeBalanceSource{},
		&fakeResourceSource{}, &fakeRateLookup{rate: decimal.NewFromInt(1)})

	err := d.DispatchForAddressWithdrawal(context.Background(), &user, 1, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.EqualValues(t, 0, transferCount(t, db))
}

func TestDispatchForAddressWithdrawalInFlightRejected(t *testing.T) {
	const source = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

	db := newTestDB(t)
	seedBase(t, db)

	var user entities.User
	require.NoError(t, db.First(&user, 1).Error)

	balances := &fakeBalanceSource{balances: []providers.AddressBalance{
		tronBalance(source, "0.2", "0.6"),
	}}
	d := newTestDispatcher(db, balances,
		&fakeResourceSource{resources: tronEnergy(0)},
		&fakeRateLookup{rate: decimal.NewFromInt(3)})

	require.NoError(t, d.DispatchForAddressWithdrawal(context.Background(), &user, 1, source))

	// The first transfer is still non-terminal, so a repeat request for the
	// same (source address, currency) pair must be rejected.
	err := d.DispatchForAddressWithdrawal(context.Background(), &user, 1, source)
	assert.ErrorIs(t, err, ErrTransferInFlight)
	assert.EqualValues(t, 1, transferCount(t, db))
}

type failingWalletRepo struct {
	err error
}

func (f *failingWalletRepo) GetByID(ctx context.Context, id int) (*entities.WithdrawalWallet, error) {
	return nil, f.err
}

func (f *failingWalletRepo) GetEnabled(ctx context.Context) ([]entities.WithdrawalWallet, error) {
	return nil, f.err
}

func (f *failingWalletRepo) GetEnabledByUserAndChain(ctx context.Context, userID, chainID int) (*entities.WithdrawalWallet, error) {
	return nil, f.err
}

func (f *failingWalletRepo) GetAddresses(ctx context.Context, walletID int) ([]entities.WithdrawalWalletAddress, error) {
	return nil, f.err
}

func (f *failingWalletRepo) Create(ctx context.Context, wallet *entities.WithdrawalWallet) error {
	return f.err
}

func (f *failingWalletRepo) SetEnabled(ctx context.Context, id int, enabled bool) error {
	return f.err
}

func TestDispatchForAddressWithdrawalWalletLookupErrors(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	var user entities.User
	require.NoError(t, db.First(&user, 1).Error)

	newDispatcher := func(walletErr error) *WithdrawalDispatcher {
		transactionRepo := dbrepos.NewTransactionRepository(db)
		return NewWithdrawalDispatcher(
			dbrepos.NewUserRepository(db),
			&failingWalletRepo{err: walletErr},
			dbrepos.NewCurrencyRepository(db),
			dbrepos.NewTransferRepository(db),
			&fakeBalanceSource{},
			&fakeResourceSource{},
			&fakeRateLookup{rate: decimal.NewFromInt(1)},
			NewDestinationResolver(transactionRepo),
			"binance",
			zap.NewNop(),
		)
	}

	// A missing wallet maps to the sentinel the handler answers 404 with.
	err := newDispatcher(gorm.ErrRecordNotFound).
		DispatchForAddressWithdrawal(context.Background(), &user, 1, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t")
	assert.ErrorIs(t, err, ErrNoWithdrawalWallet)

	// Any other failure must keep its identity so it surfaces as 500.
	dbErr := errors.New("connection refused")
	err = newDispatcher(dbErr).
		DispatchForAddressWithdrawal(context.Background(), &user, 1, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNoWithdrawalWallet)
}
