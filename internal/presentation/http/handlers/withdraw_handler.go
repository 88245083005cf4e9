package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/pkg/errors"

	"github.com/psapy/dv-backend/internal/application/services"
	domainRepos "github.com/psapy/dv-backend/internal/domain/repositories"
	"github.com/psapy/dv-backend/pkg/logger"
)

// WithdrawHandler handles withdrawal requests
type WithdrawHandler struct {
	dispatcher *services.WithdrawalDispatcher
	userRepo   domainRepos.UserRepository
	walletRepo domainRepos.WithdrawalWalletRepository
}

// NewWithdrawHandler creates a new WithdrawHandler
func NewWithdrawHandler(
	dispatcher *services.WithdrawalDispatcher,
	userRepo domainRepos.UserRepository,
	walletRepo domainRepos.WithdrawalWalletRepository,
) *WithdrawHandler {
	return &WithdrawHandler{
		dispatcher: dispatcher,
		userRepo:   userRepo,
		walletRepo: walletRepo,
	}
}

// Withdraw handles a targeted single-address withdrawal request. Manual
// requests bypass the energy budget.
func (h *WithdrawHandler) Withdraw() func(c echo.Context) error {
	return func(c echo.Context) error {
		log := logger.RequestLogger(c)

		email := c.FormValue("email")
		currencyIDStr := c.FormValue("currencyId")
		address := c.FormValue("address")
		if email == "" || currencyIDStr == "" || address == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "email, currencyId and address are required"})
		}

		currencyID, err := strconv.Atoi(currencyIDStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid currencyId"})
		}

		user, err := h.userRepo.GetByEmail(c.Request().Context(), email)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}

		err = h.dispatcher.DispatchForAddressWithdrawal(c.Request().Context(), user, currencyID, address)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAddress):
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid address"})
			case errors.Is(err, services.ErrNoWithdrawalWallet):
				return c.JSON(http.StatusNotFound, map[string]string{"error": "no withdrawal wallet for currency"})
			case errors.Is(err, services.ErrBalanceNotFound):
				return c.JSON(http.StatusNotFound, map[string]string{"error": "no balance for address"})
			case errors.Is(err, services.ErrTransferInFlight):
				return c.JSON(http.StatusConflict, map[string]string{"error": "transfer already in flight"})
			default:
				log.WithError(err).Error("Address withdrawal failed")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "withdrawal failed"})
			}
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Sweep triggers a batch dispatch for all of a user's enabled wallets.
// Per-wallet failures are reported but do not abort sibling wallets.
func (h *WithdrawHandler) Sweep() func(c echo.Context) error {
	return func(c echo.Context) error {
		log := logger.RequestLogger(c)
		ctx := c.Request().Context()

		email := c.FormValue("email")
		if email == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "email is required"})
		}

		user, err := h.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}

		wallets, err := h.walletRepo.GetEnabled(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to load wallets")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load wallets"})
		}

		swept := 0
		failed := 0
		for i := range wallets {
			if wallets[i].UserID != user.ID {
				continue
			}
			if err := h.dispatcher.DispatchForWallet(ctx, &wallets[i]); err != nil {
				failed++
				log.WithError(err).WithField("wallet_id", wallets[i].ID).Error("Wallet sweep failed")
				continue
			}
			swept++
		}

		return c.JSON(http.StatusOK, map[string]int{"swept": swept, "failed": failed})
	}
}
