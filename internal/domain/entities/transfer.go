package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer intent.
type TransferStatus int8

const (
	TransferStatusWaiting TransferStatus = iota
	TransferStatusSending
	TransferStatusSuccess
	TransferStatusFailed
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusWaiting:
		return "WAITING"
	case TransferStatusSending:
		return "SENDING"
	case TransferStatusSuccess:
		return "SUCCESS"
	case TransferStatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the status is final.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusSuccess || s == TransferStatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Terminal states accept no further transitions.
func (s TransferStatus) CanTransition(next TransferStatus) bool {
	switch s {
	case TransferStatusWaiting:
		return next == TransferStatusSending || next == TransferStatusSuccess || next == TransferStatusFailed
	case TransferStatusSending:
		return next == TransferStatusSuccess || next == TransferStatusFailed
	default:
		return false
	}
}

// Transfer represents an intent to move funds from a hot-wallet address to a
// payout address. Rows are created by the dispatcher and advanced by the
// processing provider's callbacks; they are never deleted.
type Transfer struct {
	ID              int             `gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int             `gorm:"not null;column:user_id"`
	CurrencyID      int             `gorm:"not null;index:transfer_currency_idx;column:currency_id"`
	FromAddress     string          `gorm:"size:200;not null;index:transfer_from_address_idx;column:from_address"`
	ToAddress       string          `gorm:"size:200;not null;column:to_address"`
	ContractAddress string          `gorm:"size:200;not null;default:'';column:contract_address"`
	Amount          decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount"`
	AmountUSD       decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount_usd"`
	Status          TransferStatus  `gorm:"type:smallint;not null;index:transfer_status_idx;column:status"`
	Blockchain      string          `gorm:"size:50;not null;column:blockchain"`
	CreateAt        time.Time       `gorm:"column:create_at;default:CURRENT_TIMESTAMP;not null"`
}

func (Transfer) TableName() string {
	return "transfer"
}
