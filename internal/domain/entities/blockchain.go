package entities

// Blockchain names recognized by the dispatcher.
const (
	BlockchainTron     = "tron"
	BlockchainEthereum = "ethereum"
)

// Blockchain represents blockchain reference information
type Blockchain struct {
	ID          int    `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string `gorm:"size:50;not null;uniqueIndex:blockchain_name_idx;column:name"`
	NetworkID   int    `gorm:"column:network_id"`
	ActiveWatch bool   `gorm:"default:false;not null;column:active_watch"`
	ScanURL     string `gorm:"column:scan_url"`
}

func (Blockchain) TableName() string {
	return "blockchain"
}

// RequiresEnergy reports whether transfers on this blockchain spend from a
// metered per-owner resource budget.
func RequiresEnergy(blockchain string) bool {
	return blockchain == BlockchainTron
}
