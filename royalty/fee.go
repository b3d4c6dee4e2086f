package royalty

import (
	"math/big"

	"github.com/ruteri/royalty-registry/interfaces"
)

var feeDenominator = new(big.Int).SetUint64(interfaces.FeeDenominator)

// RoyaltyAmount returns salePrice * feeRate / FeeDenominator, truncated toward
// zero. A nil salePrice counts as zero. The result is always a fresh value.
func RoyaltyAmount(salePrice *big.Int, feeRate uint64) *big.Int {
	if salePrice == nil || feeRate == 0 {
		return new(big.Int)
	}
	amount := new(big.Int).Mul(salePrice, new(big.Int).SetUint64(feeRate))
	return amount.Quo(amount, feeDenominator)
}
