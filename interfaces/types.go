package interfaces

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// FeeDenominator is the fixed denominator of every fee rate. A fee rate of
// 500000 is 50% of the sale price.
const FeeDenominator uint64 = 1_000_000

// Address identifies assets, administrators, callers and royalty receivers.
// It is a 20-byte Ethereum address.
type Address = common.Address

// NullAddress is the distinguished "nobody" identity. An unconfigured asset
// reports it as its receiver.
var NullAddress = Address{}

// ParseAddress parses a 40-char hex string with or without the 0x prefix.
func ParseAddress(s string) (Address, error) {
	clean := strings.TrimSpace(s)
	if !strings.HasPrefix(clean, "0x") && !strings.HasPrefix(clean, "0X") {
		clean = "0x" + clean
	}
	if !common.IsHexAddress(clean) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(clean), nil
}

// RoyaltyConfig is the royalty policy of a single asset.
type RoyaltyConfig struct {
	// Receiver is entitled to the royalty payment.
	Receiver Address `json:"receiver"`

	// FeeRate is the numerator over FeeDenominator.
	FeeRate uint64 `json:"fee_rate"`

	// Permanent freezes the config once set. It is never cleared.
	Permanent bool `json:"permanent"`

	// Revision counts committed writes of the asset's config. The registry
	// assigns it on every write; the value passed to Set is ignored.
	Revision uint64 `json:"revision"`
}

// RoyaltyInfo is what a marketplace needs to pay out a royalty for one sale.
type RoyaltyInfo struct {
	Receiver Address
	Amount   *big.Int
}

// IsZero reports whether the info is the absent-config default.
func (i RoyaltyInfo) IsZero() bool {
	return i.Receiver == NullAddress && (i.Amount == nil || i.Amount.Sign() == 0)
}
