package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/psapy/dv-backend/internal/domain/entities"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// WithdrawScheduler periodically runs the sequential withdrawal picker for
// every enabled wallet. One candidate per wallet per tick; the resource
// budget and cool-down rules decide whether anything is emitted.
type WithdrawScheduler struct {
	dispatcher *WithdrawalDispatcher
	walletRepo domainRepos.WithdrawalWalletRepository
	logger     *zap.Logger
	cron       *cron.Cron
	spec       string

	mu           sync.Mutex
	isRunning    bool
	lastDispatch map[int]time.Time
}

// NewWithdrawScheduler creates a new withdraw scheduler
func NewWithdrawScheduler(
	dispatcher *WithdrawalDispatcher,
	walletRepo domainRepos.WithdrawalWalletRepository,
	spec string,
	logger *zap.Logger,
) *WithdrawScheduler {
	return &WithdrawScheduler{
		dispatcher:   dispatcher,
		walletRepo:   walletRepo,
		logger:       logger,
		cron:         cron.New(cron.WithSeconds()),
		spec:         spec,
		isRunning:    false,
		lastDispatch: make(map[int]time.Time),
	}
}

// Start starts the withdraw scheduler
func (s *WithdrawScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		s.logger.Warn("Withdraw scheduler is already running")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, s.processWallets)
	if err != nil {
		s.logger.Error("Failed to add cron job", zap.Error(err))
		return err
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Withdraw scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the withdraw scheduler
func (s *WithdrawScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Stop()
	s.isRunning = false
	s.logger.Info("Withdraw scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *WithdrawScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// processWallets runs one scheduling round across all enabled wallets.
// Per-wallet failures are logged and never abort the round.
func (s *WithdrawScheduler) processWallets() {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wallets, err := s.walletRepo.GetEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to load enabled wallets", zap.Error(err))
		return
	}

	dispatched := 0
	failed := 0
	for i := range wallets {
		wallet := &wallets[i]
		if !s.due(wallet) {
			continue
		}

		transfer, err := s.dispatcher.SelectNextForWallet(ctx, wallet)
		if err != nil {
			failed++
			s.logger.Error("Wallet dispatch failed",
				zap.Int("wallet_id", wallet.ID),
				zap.String("blockchain", wallet.Blockchain),
				zap.Error(err),
			)
			continue
		}
		if transfer != nil {
			dispatched++
			s.markDispatched(wallet.ID)
		}
	}

	s.logger.Info("Scheduled withdraw processing completed",
		zap.Int("wallets", len(wallets)),
		zap.Int("dispatched", dispatched),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// ProcessOnce runs one scheduling round immediately (for manual execution)
func (s *WithdrawScheduler) ProcessOnce() {
	s.processWallets()
}

// due honors the wallet's optional withdraw interval between automatic
// dispatches.
func (s *WithdrawScheduler) due(wallet *entities.WithdrawalWallet) bool {
	if wallet.WithdrawInterval == nil || *wallet.WithdrawInterval <= 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastDispatch[wallet.ID]
	if !ok {
		return true
	}
	return time.Since(last) >= time.Duration(*wallet.WithdrawInterval)*time.Second
}

func (s *WithdrawScheduler) markDispatched(walletID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDispatch[walletID] = time.Now()
}
