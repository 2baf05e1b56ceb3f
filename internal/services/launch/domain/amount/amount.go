// Package amount provides overflow-checked unsigned arithmetic for ledger
// balances, commitments, and token allocations.
//
// Ledger mutations never wrap: deciders call these helpers before emitting an
// event and reject the command when an operation would overflow or underflow.
package amount

import (
	"errors"
	"math/bits"
)

var (
	// ErrOverflow indicates the result does not fit in 64 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow indicates a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow")
)

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// SaturatingSub returns a-b, or zero when b exceeds a.
func SaturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// MulDiv returns floor(a*b/d) using a 128-bit intermediate product.
//
// A zero divisor yields zero rather than an error; callers that need to
// distinguish that case check the divisor themselves.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrOverflow
	}
	quo, _ := bits.Div64(hi, lo, d)
	return quo, nil
}
