package num

// comba computes the full product of the magnitudes of x and y into out,
// one output column at a time. The columns are summed into a rolling
// three-limb accumulator (c0, c1, c2); c0 is stored when the column is
// complete and the accumulator is shifted down by one limb.
//
// out must hold at least x.used+y.used limbs; the number of product limbs
// written is returned.
func comba(out []uint32, x, y Scaled) int {
	if x.used == 0 || y.used == 0 {
		return 0
	}

	pa := x.used + y.used
	var c0, c1, c2 uint32

	for ix := 0; ix < pa; ix++ {
		ty := ix
		if ty > y.used-1 {
			ty = y.used - 1
		}
		tx := ix - ty

		iy := x.used - tx
		if iy > ty+1 {
			iy = ty + 1
		}

		c0, c1, c2 = c1, c2, 0

		for iz := 0; iz < iy; iz++ {
			t := uint64(c0) + uint64(x.dp[tx+iz])*uint64(y.dp[ty-iz])
			c0 = uint32(t)
			t = uint64(c1) + t>>scaledLimbBits
			c1 = uint32(t)
			c2 += uint32(t >> scaledLimbBits)
		}

		out[ix] = c0
	}
	return pa
}

// fitProduct copies the product limbs in p into a Scaled. ErrCapacity is
// returned if a non-zero limb lies at or beyond ScaledLimbs.
func fitProduct(p []uint32, neg bool, op string) (z Scaled, err error) {
	n := len(p)
	for n > 0 && p[n-1] == 0 {
		n--
	}
	if n > ScaledLimbs {
		return zeroScaled, ErrCapacity.New("scaled %s needs %d limbs, capacity %d", op, n, ScaledLimbs)
	}
	copy(z.dp[:], p[:n])
	z.used = n
	z.neg = neg
	z.clamp()
	return z, nil
}

// Mul returns the integer product of the raw magnitudes of x and y, with
// the sign of x XOR y. It does not rescale; see MulScaled for the
// fixed-point product. ErrCapacity is returned if the product needs more
// than ScaledLimbs limbs.
func (x Scaled) Mul(y Scaled) (Scaled, error) {
	var p [ScaledLimbs * 2]uint32
	n := comba(p[:], x, y)
	return fitProduct(p[:n], x.neg != y.neg, "product")
}

// MulScaled returns the fixed-point product x * y: the full double-width
// product shifted right by ScaleLimbs limbs, truncating the fractional
// bits below 2**-64 toward zero. ErrCapacity is returned only if the
// rescaled product does not fit.
func (x Scaled) MulScaled(y Scaled) (Scaled, error) {
	var p [ScaledLimbs * 2]uint32
	n := comba(p[:], x, y)
	if n <= ScaleLimbs {
		return zeroScaled, nil
	}
	return fitProduct(p[ScaleLimbs:n], x.neg != y.neg, "scaled product")
}
