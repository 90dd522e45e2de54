// Package conv provides safe integer conversion helpers for the transducer
// engine.
//
// These functions perform bounds checking before narrowing integer
// conversions to prevent silent overflow. The panicking variants are for
// conversions that can only fail due to a programming error (an internal
// invariant broken by this package itself); the checked variants return ok
// so callers parsing untrusted AT&T text can turn overflow into a regular
// LoadOverflow error instead of crashing on attacker- or typo-supplied
// input.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// Uint64ToUint32 safely converts a uint64 to uint32.
// Panics if n > math.MaxUint32.
//
//go:inline
func Uint64ToUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		panic("integer overflow: uint64 value out of uint32 range")
	}
	return uint32(n)
}

// CheckedIntToUint32 converts an int to uint32, returning ok=false instead
// of panicking when n is out of range. Used where the source of n is
// untrusted (parsed text), so overflow is an ordinary load error.
func CheckedIntToUint32(n int) (v uint32, ok bool) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// CheckedUint64ToUint32 converts a uint64 to uint32, returning ok=false on
// overflow instead of panicking.
func CheckedUint64ToUint32(n uint64) (v uint32, ok bool) {
	if n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
