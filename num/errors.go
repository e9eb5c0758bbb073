package num

import "github.com/zeebo/errs"

var (
	// ErrCapacity is returned when a result needs more limbs than the
	// destination type can hold. The destination is never partially
	// written; high-order limbs are never silently dropped.
	ErrCapacity = errs.Class("num: capacity overflow")

	// ErrMalformed is returned by the decimal parsers for empty input or
	// for a character that is not an ASCII digit.
	ErrMalformed = errs.Class("num: malformed input")

	// ErrDomain is returned when a float cannot be represented as a
	// Scaled: NaN, ±Inf, or a magnitude beyond the fixed capacity.
	ErrDomain = errs.Class("num: domain error")
)
