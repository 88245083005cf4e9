package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/psapy/dv-backend/internal/application/services"
	"github.com/psapy/dv-backend/internal/domain/entities"
	"github.com/psapy/dv-backend/internal/notification"
	"github.com/psapy/dv-backend/pkg/logger"
)

// CallbackHandler handles processing-provider callbacks
type CallbackHandler struct {
	reconciler *services.CallbackReconciler
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(reconciler *services.CallbackReconciler) *CallbackHandler {
	return &CallbackHandler{
		reconciler: reconciler,
	}
}

// callbackRequest is the wire shape of a provider notification.
type callbackRequest struct {
	Tx              string           `json:"tx"`
	Sender          string           `json:"sender"`
	Address         string           `json:"address"`
	Amount          *decimal.Decimal `json:"amount"`
	ContractAddress string           `json:"contractAddress"`
	Blockchain      string           `json:"blockchain"`
	OwnerID         string           `json:"ownerId"`
	IsManual        bool             `json:"isManual"`
	Time            *int64           `json:"time"`
	Energy          int64            `json:"energy"`
	Bandwidth       int64            `json:"bandwidth"`
}

// Handle validates the callback payload and hands it to the reconciler.
// Duplicate deliveries answer 200 like first deliveries; failures answer 500
// so the provider redelivers.
func (h *CallbackHandler) Handle() func(c echo.Context) error {
	return func(c echo.Context) error {
		log := logger.RequestLogger(c)

		var req callbackRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}
		if req.Tx == "" || req.Sender == "" || req.Address == "" || req.Blockchain == "" || req.OwnerID == "" || req.Amount == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		}

		n := entities.TransferNotification{
			Tx:              req.Tx,
			Sender:          req.Sender,
			Address:         req.Address,
			Amount:          *req.Amount,
			ContractAddress: req.ContractAddress,
			Blockchain:      req.Blockchain,
			OwnerID:         req.OwnerID,
			IsManual:        req.IsManual,
			Energy:          req.Energy,
			Bandwidth:       req.Bandwidth,
		}
		if req.Time != nil {
			t := time.Unix(*req.Time, 0).UTC()
			n.Time = &t
		}

		if err := h.reconciler.Reconcile(c.Request().Context(), n); err != nil {
			if errors.Is(err, services.ErrNegativeAmount) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Negative amount."})
			}

			log.WithError(err).WithField("tx", req.Tx).Error("Callback reconciliation failed")
			notification.SendTelMsg("Callback reconciliation failed for tx " + req.Tx + ": " + err.Error())
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "reconciliation failed"})
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
