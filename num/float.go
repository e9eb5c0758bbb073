package num

import (
	"math"
	"math/bits"
)

const (
	f64MantBits = 52
	f64ExpMask  = 0x7FF
	f64Bias     = 1023

	f32MantBits = 23
	f32ExpMask  = 0xFF
	f32Bias     = 127
)

// ScaledFromFloat64 converts f to a Scaled exactly, except that bits
// below 2**-64 are truncated toward zero. Both zeros and subnormals
// become zero. NaN, infinities and magnitudes of 2**128 or more result in
// ErrDomain.
func ScaledFromFloat64(f float64) (Scaled, error) {
	b := math.Float64bits(f)
	neg := b>>63 != 0
	e := int(b>>f64MantBits) & f64ExpMask
	m := b & (1<<f64MantBits - 1)

	switch e {
	case f64ExpMask:
		return zeroScaled, ErrDomain.New("scaled from float64 %v", f)
	case 0:
		// Subnormal; the exponent is fixed at its minimum.
		return scaledFromSignificand(m, 1-f64Bias-f64MantBits, neg, f)
	}
	return scaledFromSignificand(m|1<<f64MantBits, e-f64Bias-f64MantBits, neg, f)
}

// ScaledFromFloat32 is ScaledFromFloat64 for binary32 input.
func ScaledFromFloat32(f float32) (Scaled, error) {
	b := math.Float32bits(f)
	neg := b>>31 != 0
	e := int(b>>f32MantBits) & f32ExpMask
	m := uint64(b & (1<<f32MantBits - 1))

	switch e {
	case f32ExpMask:
		return zeroScaled, ErrDomain.New("scaled from float32 %v", f)
	case 0:
		return scaledFromSignificand(m, 1-f32Bias-f32MantBits, neg, f)
	}
	return scaledFromSignificand(m|1<<f32MantBits, e-f32Bias-f32MantBits, neg, f)
}

// scaledFromSignificand returns sig * 2**exp. The significand is placed
// so its bit 0 lands at magnitude bit exp+ScaleBits, and each limb from
// the highest affected one down takes its 32-bit slice of it.
func scaledFromSignificand(sig uint64, exp int, neg bool, src interface{}) (out Scaled, err error) {
	if sig == 0 {
		return zeroScaled, nil
	}

	shift := exp + ScaleBits
	high := bits.Len64(sig) + shift
	if high <= 0 {
		return zeroScaled, nil
	}

	top := (high - 1) / scaledLimbBits
	if top >= ScaledLimbs {
		return zeroScaled, ErrDomain.New("scaled from float %v: magnitude needs limb %d, capacity %d", src, top, ScaledLimbs)
	}

	for i := top; i >= 0; i-- {
		off := i*scaledLimbBits - shift
		if off >= 0 {
			out.dp[i] = uint32(sig >> uint(off))
		} else {
			out.dp[i] = uint32(sig << uint(-off))
		}
	}
	out.used = top + 1
	out.neg = neg
	out.clamp()
	return out, nil
}

// window returns the 64 magnitude bits starting at bit pos, and whether
// any bit below pos is set.
func (x Scaled) window(pos int) (w uint64, sticky bool) {
	var words [ScaledLimbs/2 + 1]uint64
	for i := 0; i < ScaledLimbs/2; i++ {
		words[i] = uint64(x.dp[2*i+1])<<32 | uint64(x.dp[2*i])
	}

	q, r := pos/64, uint(pos%64)
	w = words[q] >> r
	if r != 0 {
		w |= words[q+1] << (64 - r)
	}

	for i := 0; i < q; i++ {
		if words[i] != 0 {
			sticky = true
		}
	}
	if words[q]&(1<<r-1) != 0 {
		sticky = true
	}
	return w, sticky
}

// mantissa returns the top bits of the magnitude in a uint64 and the
// power of two that scales it back to the real value. When bits are
// dropped the lowest bit of the result is forced on, so a later rounding
// to 53 or 24 bits never sees a false tie.
func (x Scaled) mantissa() (w uint64, exp int) {
	n := x.BitLen()
	if n <= 64 {
		return uint64(x.dp[1])<<32 | uint64(x.dp[0]), -ScaleBits
	}
	pos := n - 64
	w, sticky := x.window(pos)
	if sticky {
		w |= 1
	}
	return w, pos - ScaleBits
}

// AsFloat64 returns the value of x rounded to the nearest float64, ties
// to even. Any float64 produced from ScaledFromFloat64 round trips
// exactly.
func (x Scaled) AsFloat64() float64 {
	if x.used == 0 {
		return 0
	}
	w, exp := x.mantissa()
	f := math.Ldexp(float64(w), exp)
	if x.neg {
		f = -f
	}
	return f
}

// AsFloat32 returns the value of x rounded to the nearest float32, ties
// to even. Magnitudes of 2**128 or more become infinite.
func (x Scaled) AsFloat32() float32 {
	if x.used == 0 {
		return 0
	}
	w, exp := x.mantissa()
	g := math.Ldexp(float64(float32(w)), exp)
	if g > math.MaxFloat32 {
		g = math.Inf(1)
	}
	f := float32(g)
	if x.neg {
		f = -f
	}
	return f
}
