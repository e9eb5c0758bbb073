package num

// ScaledFromString parses a signed decimal integer, with an optional
// leading '-', into the raw magnitude of a Scaled. The real value of the
// result is the parsed integer / 2**64, so "46116860184273879040" is 2.5.
//
// An empty string, a lone '-', or any non-digit byte results in
// ErrMalformed. A magnitude wider than ScaledLimbs limbs results in
// ErrCapacity.
func ScaledFromString(s string) (out Scaled, err error) {
	digits := s
	neg := false
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return zeroScaled, ErrMalformed.New("scaled string %q has no digits", s)
	}

	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			off := i
			if neg {
				off++
			}
			return zeroScaled, ErrMalformed.New("scaled string %q: invalid digit %q at offset %d", s, c, off)
		}
		if out, err = out.MulDigit(10); err != nil {
			return zeroScaled, err
		}
		if out, err = out.AddDigit(uint32(c - '0')); err != nil {
			return zeroScaled, err
		}
	}

	out.neg = neg
	out.clamp()
	return out, nil
}

// MustScaledFromString is ScaledFromString for constants; it panics on
// error.
func MustScaledFromString(s string) Scaled {
	v, err := ScaledFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Q64 is the two-word wire form of a Scaled: Hi holds the sign in bit 63
// and the integer part (limbs 2 and 3, 63 bits) below it; Lo holds the
// fraction (limbs 0 and 1).
type Q64 struct {
	Hi, Lo uint64
}

// Raw returns the wire words of x. inRange is false if the magnitude
// does not fit in 127 bits, in which case the high bits are dropped.
func (x Scaled) Raw() (hi, lo uint64, inRange bool) {
	lo = uint64(x.dp[1])<<32 | uint64(x.dp[0])
	hi = uint64(x.dp[3]&0x7FFFFFFF)<<32 | uint64(x.dp[2])
	if x.neg {
		hi |= signBit
	}
	inRange = x.used <= 4 && x.dp[3]&0x80000000 == 0
	return hi, lo, inRange
}

// ScaledFromRaw decodes a Scaled from its wire words. A negative sign on
// a zero magnitude is dropped.
func ScaledFromRaw(hi, lo uint64) (out Scaled) {
	out.dp[0] = uint32(lo)
	out.dp[1] = uint32(lo >> 32)
	out.dp[2] = uint32(hi)
	out.dp[3] = uint32(hi>>32) & 0x7FFFFFFF
	out.used = 4
	out.neg = hi&signBit != 0
	out.clamp()
	return out
}

// Q64 returns the wire pair for x, or ErrCapacity if x does not fit.
func (x Scaled) Q64() (Q64, error) {
	hi, lo, ok := x.Raw()
	if !ok {
		return Q64{}, ErrCapacity.New("scaled %s does not fit 127-bit wire form", x)
	}
	return Q64{Hi: hi, Lo: lo}, nil
}

func (q Q64) Scaled() Scaled { return ScaledFromRaw(q.Hi, q.Lo) }

func (q Q64) String() string { return q.Scaled().String() }
