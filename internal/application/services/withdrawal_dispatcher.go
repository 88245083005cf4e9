package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/domain/entities"
	"github.com/psapy/dv-backend/internal/domain/providers"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
	"github.com/psapy/dv-backend/internal/infrastructure/chain"
)

const (
	// TronEnergyPerTransfer is the fixed energy cost assumed for one TRC20
	// transfer.
	TronEnergyPerTransfer int64 = 64000

	// QuoteAsset is the quote side of every rate lookup.
	QuoteAsset = "USDT"

	// FailedCooldown suppresses re-dispatch from a (source address,
	// currency) pair after a failed transfer.
	FailedCooldown = time.Minute
)

// MinTransferUSD is the minimum USD-equivalent a balance must reach to be
// swept.
var MinTransferUSD = decimal.NewFromInt(1)

// MaxResourceThrottledTransfers returns how many more transfers the energy
// budget allows, counting in-flight transfers as already committed spend.
// Never negative.
func MaxResourceThrottledTransfers(energyAvailable, energyPerTransfer, inFlight int64) int {
	if energyPerTransfer <= 0 {
		return 0
	}
	available := energyAvailable - inFlight*energyPerTransfer
	if available < 0 {
		return 0
	}
	return int(available / energyPerTransfer)
}

// WithdrawalDispatcher selects hot-wallet balances eligible for withdrawal
// and emits transfer intents without overrunning shared blockchain
// resources.
type WithdrawalDispatcher struct {
	userRepo          domainRepos.UserRepository
	walletRepo        domainRepos.WithdrawalWalletRepository
	currencyRepo      domainRepos.CurrencyRepository
	transferRepo      domainRepos.TransferRepository
	balanceSource     providers.BalanceSource
	resourceSource    providers.WalletResourceSource
	rateLookup        providers.RateLookup
	resolver          *DestinationResolver
	exchange          string
	energyPerTransfer int64
	logger            *zap.Logger
}

// NewWithdrawalDispatcher creates a new withdrawal dispatcher
func NewWithdrawalDispatcher(
	userRepo domainRepos.UserRepository,
	walletRepo domainRepos.WithdrawalWalletRepository,
	currencyRepo domainRepos.CurrencyRepository,
	transferRepo domainRepos.TransferRepository,
	balanceSource providers.BalanceSource,
	resourceSource providers.WalletResourceSource,
	rateLookup providers.RateLookup,
	resolver *DestinationResolver,
	exchange string,
	logger *zap.Logger,
) *WithdrawalDispatcher {
	return &WithdrawalDispatcher{
		userRepo:          userRepo,
		walletRepo:        walletRepo,
		currencyRepo:      currencyRepo,
		transferRepo:      transferRepo,
		balanceSource:     balanceSource,
		resourceSource:    resourceSource,
		rateLookup:        rateLookup,
		resolver:          resolver,
		exchange:          exchange,
		energyPerTransfer: TronEnergyPerTransfer,
		logger:            logger,
	}
}

// DispatchForWallet sweeps all eligible balances of a wallet into Waiting
// transfer intents. Per-balance failures are logged and do not stop the
// remaining balances.
func (d *WithdrawalDispatcher) DispatchForWallet(ctx context.Context, wallet *entities.WithdrawalWallet) error {
	currency, err := d.currencyRepo.GetWithBalanceByChain(ctx, wallet.ChainID)
	if err != nil {
		return errors.Wrapf(err, "no balance currency for chain %d", wallet.ChainID)
	}

	rate, err := d.rateLookup.GetRate(ctx, d.exchange, currency.Symbol, QuoteAsset)
	if err != nil {
		return errors.Wrapf(err, "rate lookup %s/%s", currency.Symbol, QuoteAsset)
	}

	user, err := d.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil {
		return errors.Wrapf(err, "user %d", wallet.UserID)
	}

	balances, err := d.balanceSource.GetAddressBalances(ctx, user.ProcessingID, wallet.Blockchain)
	if err != nil {
		return errors.Wrap(err, "get address balances")
	}

	budget := -1 // unlimited on chains without a metered resource
	if entities.RequiresEnergy(wallet.Blockchain) {
		budget, err = d.resourceBudget(ctx, user.ProcessingID, wallet.Blockchain)
		if err != nil {
			return err
		}
		if budget == 0 {
			d.logger.Info("No energy budget left, skipping dispatch this cycle",
				zap.Int("wallet_id", wallet.ID),
				zap.String("blockchain", wallet.Blockchain),
			)
			return nil
		}
	}

	created := 0
	for _, balance := range balances {
		if budget >= 0 && created >= budget {
			break
		}
		if balance.Blockchain != wallet.Blockchain {
			continue
		}

		amountUSD := balance.Amount.Mul(rate)
		if amountUSD.LessThan(MinTransferUSD) {
			continue
		}

		ok, err := d.dispatchBalance(ctx, wallet, currency, balance, amountUSD)
		if err != nil {
			// Isolated per balance: one bad address must not block the rest.
			d.logger.Error("Failed to dispatch balance",
				zap.Int("wallet_id", wallet.ID),
				zap.String("from_address", balance.Address),
				zap.Error(err),
			)
			continue
		}
		if ok {
			created++
		}
	}

	d.logger.Info("Wallet dispatch completed",
		zap.Int("wallet_id", wallet.ID),
		zap.String("blockchain", wallet.Blockchain),
		zap.Int("transfers_created", created),
	)
	return nil
}

// dispatchBalance emits one Waiting transfer for a balance unless an
// in-flight transfer or a fresh failure already covers the pair.
func (d *WithdrawalDispatcher) dispatchBalance(
	ctx context.Context,
	wallet *entities.WithdrawalWallet,
	currency *entities.Currency,
	balance providers.AddressBalance,
	amountUSD decimal.Decimal,
) (bool, error) {
	eligible, err := d.eligibleSource(ctx, balance.Address, currency.ID)
	if err != nil {
		return false, err
	}
	if !eligible {
		return false, nil
	}

	toAddress, err := d.resolver.Resolve(ctx, balance.Address, wallet)
	if err != nil {
		return false, err
	}

	transfer := &entities.Transfer{
		UserID:          wallet.UserID,
		CurrencyID:      currency.ID,
		FromAddress:     balance.Address,
		ToAddress:       toAddress,
		ContractAddress: currency.Address,
		Amount:          balance.Amount,
		AmountUSD:       amountUSD,
		Status:          entities.TransferStatusWaiting,
		Blockchain:      wallet.Blockchain,
		CreateAt:        time.Now(),
	}
	if err := d.transferRepo.Create(ctx, transfer); err != nil {
		return false, errors.Wrap(err, "create transfer")
	}
	return true, nil
}

// DispatchForAddressWithdrawal creates exactly one Waiting transfer for a
// user-requested source address. The energy budget check is bypassed: a
// manual request is not throttled.
func (d *WithdrawalDispatcher) DispatchForAddressWithdrawal(ctx context.Context, user *entities.User, currencyID int, address string) error {
	currency, err := d.currencyRepo.GetByID(ctx, currencyID)
	if err != nil {
		return errors.Wrapf(err, "currency %d", currencyID)
	}

	wallet, err := d.walletRepo.GetEnabledByUserAndChain(ctx, user.ID, currency.ChainID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(ErrNoWithdrawalWallet, "user %d chain %d", user.ID, currency.ChainID)
		}
		return errors.Wrapf(err, "wallet for user %d chain %d", user.ID, currency.ChainID)
	}

	if !chain.ValidAddress(wallet.Blockchain, address) {
		return errors.Wrapf(ErrInvalidAddress, "%s on %s", address, wallet.Blockchain)
	}

	// Manual requests skip the energy budget and the failed cool-down, but
	// never the one-in-flight rule per (source address, currency).
	inFlight, err := d.transferRepo.ExistsInFlight(ctx, address, currency.ID)
	if err != nil {
		return errors.Wrap(err, "check in-flight transfers")
	}
	if inFlight {
		return errors.Wrapf(ErrTransferInFlight, "%s currency %d", address, currency.ID)
	}

	balances, err := d.balanceSource.GetAddressBalances(ctx, user.ProcessingID, wallet.Blockchain)
	if err != nil {
		return errors.Wrap(err, "get address balances")
	}
	var balance *providers.AddressBalance
	for i := range balances {
		if balances[i].Address == address {
			balance = &balances[i]
			break
		}
	}
	if balance == nil {
		return errors.Wrap(ErrBalanceNotFound, address)
	}

	rate, err := d.rateLookup.GetRate(ctx, d.exchange, currency.Symbol, QuoteAsset)
	if err != nil {
		return errors.Wrapf(err, "rate lookup %s/%s", currency.Symbol, QuoteAsset)
	}

	toAddress, err := d.resolver.Resolve(ctx, address, wallet)
	if err != nil {
		return err
	}

	transfer := &entities.Transfer{
		UserID:          user.ID,
		CurrencyID:      currency.ID,
		FromAddress:     address,
		ToAddress:       toAddress,
		ContractAddress: currency.Address,
		Amount:          balance.Amount,
		AmountUSD:       balance.Amount.Mul(rate),
		Status:          entities.TransferStatusWaiting,
		Blockchain:      wallet.Blockchain,
		CreateAt:        time.Now(),
	}
	return d.transferRepo.Create(ctx, transfer)
}

// SelectNextForWallet picks the single best withdrawal candidate for a
// wallet and emits one Sending transfer. Returns (nil, nil) when the energy
// budget is exhausted or no address qualifies; the scheduler retries next
// tick.
func (d *WithdrawalDispatcher) SelectNextForWallet(ctx context.Context, wallet *entities.WithdrawalWallet) (*entities.Transfer, error) {
	currency, err := d.currencyRepo.GetWithBalanceByChain(ctx, wallet.ChainID)
	if err != nil {
		return nil, errors.Wrapf(err, "no balance currency for chain %d", wallet.ChainID)
	}

	user, err := d.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil {
		return nil, errors.Wrapf(err, "user %d", wallet.UserID)
	}

	if entities.RequiresEnergy(wallet.Blockchain) {
		budget, err := d.resourceBudget(ctx, user.ProcessingID, wallet.Blockchain)
		if err != nil {
			return nil, err
		}
		if budget == 0 {
			d.logger.Info("No energy budget left, no candidate this tick",
				zap.Int("wallet_id", wallet.ID),
			)
			return nil, nil
		}
	}

	balances, err := d.balanceSource.GetAddressBalances(ctx, user.ProcessingID, wallet.Blockchain)
	if err != nil {
		return nil, errors.Wrap(err, "get address balances")
	}

	var best *providers.AddressBalance
	for i := range balances {
		balance := &balances[i]
		if balance.Blockchain != wallet.Blockchain {
			continue
		}
		if balance.AmountUSD.LessThan(wallet.MinBalance) {
			continue
		}
		eligible, err := d.eligibleSource(ctx, balance.Address, currency.ID)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		if best == nil || balance.AmountUSD.GreaterThan(best.AmountUSD) {
			best = balance
		}
	}
	if best == nil {
		return nil, nil
	}

	toAddress, err := d.resolver.Resolve(ctx, best.Address, wallet)
	if err != nil {
		return nil, err
	}

	transfer := &entities.Transfer{
		UserID:          wallet.UserID,
		CurrencyID:      currency.ID,
		FromAddress:     best.Address,
		ToAddress:       toAddress,
		ContractAddress: currency.Address,
		Amount:          best.Amount,
		AmountUSD:       best.AmountUSD,
		Status:          entities.TransferStatusSending,
		Blockchain:      wallet.Blockchain,
		CreateAt:        time.Now(),
	}
	if err := d.transferRepo.Create(ctx, transfer); err != nil {
		return nil, errors.Wrap(err, "create transfer")
	}

	d.logger.Info("Selected withdrawal candidate",
		zap.Int("wallet_id", wallet.ID),
		zap.String("from_address", transfer.FromAddress),
		zap.String("to_address", transfer.ToAddress),
		zap.String("amount_usd", transfer.AmountUSD.String()),
	)
	return transfer, nil
}

// eligibleSource checks the in-flight and failed-cool-down exclusions for a
// (source address, currency) pair.
func (d *WithdrawalDispatcher) eligibleSource(ctx context.Context, fromAddress string, currencyID int) (bool, error) {
	inFlight, err := d.transferRepo.ExistsInFlight(ctx, fromAddress, currencyID)
	if err != nil {
		return false, errors.Wrap(err, "check in-flight transfers")
	}
	if inFlight {
		return false, nil
	}

	failed, err := d.transferRepo.HasRecentFailed(ctx, fromAddress, currencyID, time.Now().Add(-FailedCooldown))
	if err != nil {
		return false, errors.Wrap(err, "check failed transfers")
	}
	return !failed, nil
}

// resourceBudget reads the owner's energy counter and converts it to a
// transfer budget net of in-flight commitments.
func (d *WithdrawalDispatcher) resourceBudget(ctx context.Context, ownerID, blockchain string) (int, error) {
	resources, err := d.resourceSource.GetWalletResources(ctx, ownerID)
	if err != nil {
		return 0, errors.Wrap(err, "get wallet resources")
	}

	var energy int64
	for _, res := range resources {
		if res.Blockchain == blockchain {
			energy = res.Energy
			break
		}
	}

	inFlight, err := d.transferRepo.CountInFlight(ctx, blockchain)
	if err != nil {
		return 0, errors.Wrap(err, "count in-flight transfers")
	}

	return MaxResourceThrottledTransfers(energy, d.energyPerTransfer, inFlight), nil
}
