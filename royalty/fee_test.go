package royalty

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoyaltyAmount(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890123456789", 10)
	hugeRoyalty, _ := new(big.Int).SetString("30864197253086419725308641972530864197", 10)

	tests := []struct {
		name      string
		salePrice *big.Int
		feeRate   uint64
		want      *big.Int
	}{
		{name: "half", salePrice: big.NewInt(10_000), feeRate: 500_000, want: big.NewInt(5_000)},
		{name: "thirty percent", salePrice: big.NewInt(10_000), feeRate: 300_000, want: big.NewInt(3_000)},
		{name: "full price", salePrice: big.NewInt(10_000), feeRate: 1_000_000, want: big.NewInt(10_000)},
		{name: "truncates", salePrice: big.NewInt(999), feeRate: 1, want: big.NewInt(0)},
		{name: "truncates non-zero", salePrice: big.NewInt(1_999_999), feeRate: 1, want: big.NewInt(1)},
		{name: "zero rate", salePrice: big.NewInt(10_000), feeRate: 0, want: big.NewInt(0)},
		{name: "zero price", salePrice: big.NewInt(0), feeRate: 500_000, want: big.NewInt(0)},
		{name: "nil price", salePrice: nil, feeRate: 500_000, want: big.NewInt(0)},
		{name: "beyond float precision", salePrice: huge, feeRate: 250_000, want: hugeRoyalty},
		{name: "negative truncates toward zero", salePrice: big.NewInt(-1_999_999), feeRate: 1, want: big.NewInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoyaltyAmount(tt.salePrice, tt.feeRate)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestRoyaltyAmount_DoesNotAliasInput(t *testing.T) {
	price := big.NewInt(10_000)
	got := RoyaltyAmount(price, 1_000_000)
	got.SetInt64(1)
	assert.Equal(t, big.NewInt(10_000), price)
}
