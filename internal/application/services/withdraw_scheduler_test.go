package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbrepos "github.com/psapy/dv-backend/internal/infrastructure/database/repositories"
)

func TestWithdrawSchedulerStartStop(t *testing.T) {
	db := newTestDB(t)
	seedBase(t, db)

	d := newTestDispatcher(db, &fakeBalanceSource{},
		&fakeResourceSource{}, &fakeRateLookup{rate: decimal.NewFromInt(1)})
	s := NewWithdrawScheduler(d, dbrepos.NewWithdrawalWalletRepository(db),
		"*/10 * * * * *", zap.NewNop())

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Repeated Start is a no-op.
	require.NoError(t, s.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IsRunning()
		}()
	}
	wg.Wait()

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}
