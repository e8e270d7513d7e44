package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var weiPerEther = decimal.New(1, 18)

// WeiToEther converts native subunits to display units. The conversion is
// an exact exponent shift, never a float operation.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}

// EtherToWei converts display units to native subunits, truncating any
// precision below one wei.
func EtherToWei(eth decimal.Decimal) *big.Int {
	return eth.Mul(weiPerEther).Truncate(0).BigInt()
}
