// Package chain holds small per-blockchain helpers that do not touch the
// network.
package chain

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	tronaddress "github.com/fbsobreira/gotron-sdk/pkg/address"

	"github.com/psapy/dv-backend/internal/domain/entities"
)

// ValidAddress reports whether addr is well formed for the given blockchain.
// Unknown blockchains only get a non-empty check; the processing provider is
// the final authority.
func ValidAddress(blockchain, addr string) bool {
	if addr == "" {
		return false
	}
	switch blockchain {
	case entities.BlockchainTron:
		_, err := tronaddress.Base58ToAddress(addr)
		return err == nil
	case entities.BlockchainEthereum:
		return ethcommon.IsHexAddress(addr)
	default:
		return true
	}
}
