package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a confirmed ledger entry.
type TransactionType int8

const (
	TransactionTypeTransfer TransactionType = iota
	TransactionTypePayment
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeTransfer:
		return "TRANSFER"
	case TransactionTypePayment:
		return "PAYMENT"
	default:
		return "UNKNOWN"
	}
}

// Transaction represents confirmed on-chain activity reported by the
// processing provider. Rows are written once by the reconciler and never
// mutated; (tx_id, from_address, to_address) is unique.
type Transaction struct {
	ID          int             `gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int             `gorm:"not null;column:user_id"`
	CurrencyID  int             `gorm:"not null;column:currency_id"`
	TxID        string          `gorm:"size:120;not null;uniqueIndex:transaction_tx_from_to_idx;column:tx_id"`
	Type        TransactionType `gorm:"type:smallint;not null;index:transaction_type_idx;column:type"`
	FromAddress string          `gorm:"size:200;not null;uniqueIndex:transaction_tx_from_to_idx;column:from_address"`
	ToAddress   string          `gorm:"size:200;not null;uniqueIndex:transaction_tx_from_to_idx;column:to_address"`
	Amount      decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount"`
	AmountUSD   decimal.Decimal `gorm:"type:decimal(38,18);not null;column:amount_usd"`
	Rate        decimal.Decimal `gorm:"type:decimal(38,18);not null;column:rate"`
	Fee         decimal.Decimal `gorm:"type:decimal(38,18);column:fee"`
	IsManual    bool            `gorm:"default:false;not null;column:is_manual"`
	NetworkTime *time.Time      `gorm:"column:network_time"`
	Energy      int64           `gorm:"default:0;column:energy"`
	Bandwidth   int64           `gorm:"default:0;column:bandwidth"`
	CreateAt    time.Time       `gorm:"column:create_at;default:CURRENT_TIMESTAMP;not null"`
}

func (Transaction) TableName() string {
	return "transaction"
}
