package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a result does not fit in uint64.
var ErrOverflow = errors.New("fixedpoint: result overflows uint64")

// Q112Shift is the fractional bit width of the UQ112.112 price format.
const Q112Shift = 112

// Sqrt returns the integer square root of y (Babylonian method).
func Sqrt(y uint64) uint64 {
	if y > 3 {
		z := y
		x := y/2 + 1
		for x < z {
			z = x
			x = (y/x + x) / 2
		}
		return z
	} else if y != 0 {
		return 1
	}
	return 0
}

// Min returns the smaller of x and y.
func Min(x, y uint64) uint64 {
	if x < y {
		return x
	}
	return y
}

// SqrtProduct returns floor(sqrt(a*b)). The 128-bit product is handled via
// a 256-bit square root, so the result always fits in uint64.
func SqrtProduct(a, b uint64) uint64 {
	prod := new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(a),
		new(uint256.Int).SetUint64(b),
	)
	if prod.IsUint64() {
		return Sqrt(prod.Uint64())
	}
	return prod.Sqrt(prod).Uint64()
}

// MulDiv computes floor(a*b/den) with a 256-bit intermediate product.
// Returns ErrOverflow if the quotient does not fit in uint64, and
// ErrOverflow for a zero denominator.
func MulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrOverflow
	}
	prod := new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(a),
		new(uint256.Int).SetUint64(b),
	)
	out := prod.Div(prod, new(uint256.Int).SetUint64(den))
	if !out.IsUint64() {
		return 0, ErrOverflow
	}
	return out.Uint64(), nil
}

// RatioUQ112 encodes num/den as a UQ112.112 fixed-point value:
// (num << 112) / den. The caller must guarantee den != 0.
func RatioUQ112(num, den uint64) *uint256.Int {
	r := new(uint256.Int).SetUint64(num)
	r.Lsh(r, Q112Shift)
	return r.Div(r, new(uint256.Int).SetUint64(den))
}
