package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferNotification is the typed form of a processing-provider callback.
// Optional fields are pointers or zero values; the payload is validated at
// the HTTP boundary before it reaches the reconciler.
type TransferNotification struct {
	Tx              string          `json:"tx"`
	Sender          string          `json:"sender"`
	Address         string          `json:"address"`
	Amount          decimal.Decimal `json:"amount"`
	ContractAddress string          `json:"contractAddress"`
	Blockchain      string          `json:"blockchain"`
	OwnerID         string          `json:"ownerId"`
	IsManual        bool            `json:"isManual"`
	Time            *time.Time      `json:"time"`
	Energy          int64           `json:"energy"`
	Bandwidth       int64           `json:"bandwidth"`
}
