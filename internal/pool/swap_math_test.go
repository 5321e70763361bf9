package pool

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAmountOut(t *testing.T) {
	// 100 in against 1000/1000 at 30 bps:
	// floor(100*9970*1000 / (1000*10000 + 100*9970)) = 90
	out, err := computeAmountOut(100, 1000, 1000, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), out)

	// Zero fee degenerates to floor(in*rOut/(rIn+in)).
	out, err = computeAmountOut(100, 1000, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), out)

	out, err = computeAmountOut(1000, 1000, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), out)

	_, err = computeAmountOut(0, 1000, 1000, 30)
	assert.ErrorIs(t, err, ErrInsufficientInputAmount)

	_, err = computeAmountOut(100, 0, 1000, 30)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = computeAmountOut(100, 1000, 0, 30)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestComputeAmountOutNeverDrainsReserve(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fees := []uint64{0, 5, 30, 100, MaxFeeRateBps}

	for i := 0; i < 1000; i++ {
		reserveIn := rng.Uint64()%1_000_000_000_000 + 1
		reserveOut := rng.Uint64()%1_000_000_000_000 + 1
		amountIn := rng.Uint64()%1_000_000_000_000 + 1
		fee := fees[rng.Intn(len(fees))]

		out, err := computeAmountOut(amountIn, reserveIn, reserveOut, fee)
		require.NoError(t, err)
		require.Less(t, out, reserveOut,
			"in=%d rIn=%d rOut=%d fee=%d", amountIn, reserveIn, reserveOut, fee)
	}
}

func TestComputeAmountOutPreservesProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		reserveIn := rng.Uint64()%1_000_000_000_000 + 1
		reserveOut := rng.Uint64()%1_000_000_000_000 + 1
		amountIn := rng.Uint64()%1_000_000_000_000 + 1
		fee := uint64(rng.Intn(MaxFeeRateBps + 1))

		out, err := computeAmountOut(amountIn, reserveIn, reserveOut, fee)
		require.NoError(t, err)

		before := new(uint256.Int).Mul(
			new(uint256.Int).SetUint64(reserveIn),
			new(uint256.Int).SetUint64(reserveOut),
		)
		after := new(uint256.Int).Mul(
			new(uint256.Int).SetUint64(reserveIn+amountIn),
			new(uint256.Int).SetUint64(reserveOut-out),
		)
		require.True(t, after.Cmp(before) >= 0,
			"product decreased: in=%d rIn=%d rOut=%d fee=%d out=%d",
			amountIn, reserveIn, reserveOut, fee, out)
	}
}

func TestPriceImpactBps(t *testing.T) {
	// 100 in / 90 out against 1000/1000:
	// before = 1000*1100, after = 910*1000, impact = 1900000000/1100000 = 1727
	assert.Equal(t, uint64(1727), priceImpactBps(100, 90, 1000, 1000))

	// A trade that moves nothing has zero impact.
	assert.Equal(t, uint64(0), priceImpactBps(0, 0, 1000, 1000))

	// Tiny trades floor to zero.
	assert.Equal(t, uint64(0), priceImpactBps(1, 0, 1_000_000_000, 1_000_000_000))
}

func TestPriceImpactBpsLargeValues(t *testing.T) {
	// reserveIn + amountIn reaches exactly 2^64: the internal sum must be
	// taken in 256 bits, not wrap to zero.
	huge := uint64(1) << 63
	// before = 2^63 * 2^64, after = (2^63 - 2^62) * 2^63 = before/4.
	assert.Equal(t, uint64(7500), priceImpactBps(huge, huge/2, huge, huge))
}

func TestSlippageShortfallBpsLargeValues(t *testing.T) {
	// ideal = 2^63 * 2^63 / 2^64 = 2^62; an actual of 2^61 is a 50% miss.
	huge := uint64(1) << 63
	assert.Equal(t, uint64(5000), slippageShortfallBps(huge, huge/4, huge, huge))
}

func TestSlippageShortfallBps(t *testing.T) {
	// 10000 in against 100000/100000 at 30 bps yields 9066; the no-fee ideal
	// is floor(10000*100000/110000) = 9090, shortfall = 240000/9090 = 26.
	assert.Equal(t, uint64(26), slippageShortfallBps(10_000, 9066, 100_000, 100_000))

	// Actual at or above ideal clamps to zero.
	assert.Equal(t, uint64(0), slippageShortfallBps(10_000, 9090, 100_000, 100_000))
	assert.Equal(t, uint64(0), slippageShortfallBps(10_000, 20_000, 100_000, 100_000))
}
