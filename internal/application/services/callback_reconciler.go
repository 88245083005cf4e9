package services

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	"github.com/psapy/dv-backend/internal/domain/providers"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
)

// amountUSDPlaces is the scale ledger USD amounts are truncated to. One
// rule, applied toward zero, everywhere.
const amountUSDPlaces = 2

// RepositoryFactories builds transaction-scoped repositories so the
// reconciler's existence check, lookups and write share one atomic scope.
type RepositoryFactories struct {
	Transactions func(db *gorm.DB) domainRepos.TransactionRepository
	Currencies   func(db *gorm.DB) domainRepos.CurrencyRepository
	Users        func(db *gorm.DB) domainRepos.UserRepository
}

// CallbackReconciler converts processing-provider notifications into
// confirmed transaction rows, exactly once per (tx, sender, address) triple.
type CallbackReconciler struct {
	db         *gorm.DB
	repos      RepositoryFactories
	rateLookup providers.RateLookup
	exchange   string
	logger     *zap.Logger
}

// NewCallbackReconciler creates a new callback reconciler
func NewCallbackReconciler(
	db *gorm.DB,
	repos RepositoryFactories,
	rateLookup providers.RateLookup,
	exchange string,
	logger *zap.Logger,
) *CallbackReconciler {
	return &CallbackReconciler{
		db:         db,
		repos:      repos,
		rateLookup: rateLookup,
		exchange:   exchange,
		logger:     logger,
	}
}

// Reconcile records the notification as a transaction row. Duplicate
// deliveries are silent no-ops; any failure after the database transaction
// begins rolls the whole unit back and propagates, so the provider can
// redeliver safely.
func (r *CallbackReconciler) Reconcile(ctx context.Context, n entities.TransferNotification) error {
	if n.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.repos.Transactions(tx)

		exists, err := txRepo.ExistsByTxFromTo(ctx, n.Tx, n.Sender, n.Address)
		if err != nil {
			return errors.Wrap(err, "dedup check")
		}
		if exists {
			r.logger.Info("Duplicate notification, skipping",
				zap.String("tx", n.Tx),
				zap.String("sender", n.Sender),
				zap.String("address", n.Address),
			)
			return nil
		}

		currency, err := r.repos.Currencies(tx).GetByContractAndBlockchain(ctx, n.ContractAddress, n.Blockchain)
		if err != nil {
			return errors.Wrapf(err, "currency for contract %q on %s", n.ContractAddress, n.Blockchain)
		}

		user, err := r.repos.Users(tx).GetByProcessingID(ctx, n.OwnerID)
		if err != nil {
			return errors.Wrapf(err, "user for owner %q", n.OwnerID)
		}

		rate, err := r.rateLookup.GetRate(ctx, r.exchange, currency.Symbol, QuoteAsset)
		if err != nil {
			return errors.Wrapf(err, "rate lookup %s/%s", currency.Symbol, QuoteAsset)
		}

		record := &entities.Transaction{
			UserID:      user.ID,
			CurrencyID:  currency.ID,
			TxID:        n.Tx,
			Type:        entities.TransactionTypeTransfer,
			FromAddress: n.Sender,
			ToAddress:   n.Address,
			Amount:      n.Amount,
			AmountUSD:   n.Amount.Mul(rate).Truncate(amountUSDPlaces),
			Rate:        rate,
			IsManual:    n.IsManual,
			NetworkTime: n.Time,
			Energy:      n.Energy,
			Bandwidth:   n.Bandwidth,
		}
		if err := txRepo.Create(ctx, record); err != nil {
			return errors.Wrap(err, "create transaction")
		}

		r.logger.Info("Notification reconciled",
			zap.String("tx", n.Tx),
			zap.Int("user_id", user.ID),
			zap.Int("currency_id", currency.ID),
			zap.String("amount", n.Amount.String()),
			zap.String("amount_usd", record.AmountUSD.String()),
		)
		return nil
	})
}
