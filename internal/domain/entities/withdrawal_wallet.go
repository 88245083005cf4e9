package entities

import (
	"github.com/shopspring/decimal"
)

// WithdrawalWallet represents per-user, per-chain withdrawal configuration.
// At most one wallet exists per (user, chain); wallets are disabled, never
// deleted.
type WithdrawalWallet struct {
	ID         int             `gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int             `gorm:"not null;uniqueIndex:withdrawal_wallet_user_chain_idx;column:user_id"`
	Blockchain string          `gorm:"size:50;not null;column:blockchain"`
	ChainID    int             `gorm:"not null;uniqueIndex:withdrawal_wallet_user_chain_idx;column:chain_id"`
	Enabled    bool            `gorm:"default:true;not null;column:enabled"`
	MinBalance decimal.Decimal `gorm:"type:decimal(38,18);not null;column:min_balance"`
	// WithdrawInterval is the minimum number of seconds between automatic
	// dispatches; nil means the scheduler default.
	WithdrawInterval *int                      `gorm:"column:withdraw_interval"`
	Addresses        []WithdrawalWalletAddress `gorm:"foreignKey:WalletID;references:ID"`
}

func (WithdrawalWallet) TableName() string {
	return "withdrawal_wallet"
}

// AddressSet returns the wallet's payout addresses in configured order.
func (w *WithdrawalWallet) AddressSet() []string {
	addrs := make([]string, 0, len(w.Addresses))
	for _, a := range w.Addresses {
		addrs = append(addrs, a.Address)
	}
	return addrs
}

// WithdrawalWalletAddress represents one payout address of a withdrawal
// wallet
type WithdrawalWalletAddress struct {
	ID       int    `gorm:"primaryKey;autoIncrement;column:id"`
	WalletID int    `gorm:"not null;index:withdrawal_wallet_address_wallet_idx;column:wallet_id"`
	Address  string `gorm:"size:200;not null;column:address"`
	Position int    `gorm:"not null;default:0;column:position"`
}

func (WithdrawalWalletAddress) TableName() string {
	return "withdrawal_wallet_address"
}
