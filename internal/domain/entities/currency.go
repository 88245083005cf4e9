package entities

// Currency represents currency reference information
type Currency struct {
	ID         int        `gorm:"primaryKey;autoIncrement;column:id"`
	ChainID    int        `gorm:"column:chain_id"`
	Blockchain Blockchain `gorm:"foreignKey:ChainID;references:ID"`
	Name       string     `gorm:"size:50;not null;column:name"`
	Symbol     string     `gorm:"size:20;not null;uniqueIndex:currency_symbol_idx;column:symbol"`
	// Address is the token contract address; empty for the native asset.
	Address    string `gorm:"size:200;not null;default:'';column:address"`
	Decimal    int    `gorm:"type:numeric;column:decimal"`
	HasBalance bool   `gorm:"default:false;not null;column:has_balance"`
	IsFiat     bool   `gorm:"default:false;not null;column:is_fiat"`
}

func (Currency) TableName() string {
	return "currency"
}
