package container

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/psapy/dv-backend/internal/application/services"
	"github.com/psapy/dv-backend/internal/config"
	"github.com/psapy/dv-backend/internal/domain/providers"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
	"github.com/psapy/dv-backend/internal/infrastructure/database/repositories"
	"github.com/psapy/dv-backend/internal/infrastructure/external/processing"
	"github.com/psapy/dv-backend/internal/infrastructure/external/rates"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	// Repositories
	UserRepo             domainRepos.UserRepository
	BlockchainRepo       domainRepos.BlockchainRepository
	CurrencyRepo         domainRepos.CurrencyRepository
	WithdrawalWalletRepo domainRepos.WithdrawalWalletRepository
	TransferRepo         domainRepos.TransferRepository
	TransactionRepo      domainRepos.TransactionRepository

	// External collaborators
	BalanceSource  providers.BalanceSource
	ResourceSource providers.WalletResourceSource
	RateLookup     providers.RateLookup

	// Withdrawal services
	DestinationResolver  *services.DestinationResolver
	WithdrawalDispatcher *services.WithdrawalDispatcher
	CallbackReconciler   *services.CallbackReconciler
	WithdrawScheduler    *services.WithdrawScheduler
}

// NewContainer creates a new container with all dependencies
func NewContainer() (*Container, error) {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database
	db, err := config.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	blockchainRepo := repositories.NewBlockchainRepository(db)
	currencyRepo := repositories.NewCurrencyRepository(db)
	withdrawalWalletRepo := repositories.NewWithdrawalWalletRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)

	// Initialize external collaborators
	processingClient := processing.NewClient(cfg.Processing.BaseURL, cfg.Processing.APIKey)
	rateClient := rates.NewClient(cfg.Rates.BaseURL)

	return &Container{
		Config: cfg,
		DB:     db,

		UserRepo:             userRepo,
		BlockchainRepo:       blockchainRepo,
		CurrencyRepo:         currencyRepo,
		WithdrawalWalletRepo: withdrawalWalletRepo,
		TransferRepo:         transferRepo,
		TransactionRepo:      transactionRepo,

		BalanceSource:  processingClient,
		ResourceSource: processingClient,
		RateLookup:     rateClient,
	}, nil
}

// InitWithdrawalServices initializes dispatch and reconciliation services
func (c *Container) InitWithdrawalServices(logger *zap.Logger) error {
	resolver := services.NewDestinationResolver(c.TransactionRepo)
	c.DestinationResolver = resolver

	dispatcher := services.NewWithdrawalDispatcher(
		c.UserRepo,
		c.WithdrawalWalletRepo,
		c.CurrencyRepo,
		c.TransferRepo,
		c.BalanceSource,
		c.ResourceSource,
		c.RateLookup,
		resolver,
		c.Config.Rates.Exchange,
		logger,
	)
	c.WithdrawalDispatcher = dispatcher

	reconciler := services.NewCallbackReconciler(
		c.DB,
		services.RepositoryFactories{
			Transactions: repositories.NewTransactionRepository,
			Currencies:   repositories.NewCurrencyRepository,
			Users:        repositories.NewUserRepository,
		},
		c.RateLookup,
		c.Config.Rates.Exchange,
		logger,
	)
	c.CallbackReconciler = reconciler

	scheduler := services.NewWithdrawScheduler(
		dispatcher,
		c.WithdrawalWalletRepo,
		c.Config.Withdrawal.CronSpec,
		logger,
	)
	c.WithdrawScheduler = scheduler

	return nil
}
